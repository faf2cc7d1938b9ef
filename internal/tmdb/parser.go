package tmdb

import "time"

// posterBase prefixes relative poster paths into absolute image URLs.
const posterBase = "https://image.tmdb.org/t/p/original"

// MovieOverview is the lightweight shape returned by search and popular
// listings.
type MovieOverview struct {
	TMDBID     uint64 `json:"tmdb_id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
	Year       int    `json:"year"`
}

// MovieDetail is the full provider record normalized for local use.
type MovieDetail struct {
	TMDBID     uint64   `json:"tmdb_id"`
	Title      string   `json:"title"`
	PosterPath string   `json:"poster_path"`
	Year       int      `json:"year"`
	Duration   int      `json:"duration"`
	Overview   string   `json:"overview"`
	Genres     []string `json:"genres"`
}

func parseOverview(r searchResult) MovieOverview {
	return MovieOverview{
		TMDBID:     r.ID,
		Title:      r.OriginalTitle,
		PosterPath: posterURL(r.PosterPath),
		Year:       releaseYear(r.ReleaseDate),
	}
}

func parseDetail(d movieDetail) MovieDetail {
	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}
	return MovieDetail{
		TMDBID:     d.ID,
		Title:      d.OriginalTitle,
		PosterPath: posterURL(d.PosterPath),
		Year:       releaseYear(d.ReleaseDate),
		Duration:   d.Runtime,
		Overview:   d.Overview,
		Genres:     genres,
	}
}

func posterURL(path string) string {
	if path == "" {
		return ""
	}
	if path[0] != '/' {
		path = "/" + path
	}
	return posterBase + path
}

// releaseYear extracts the year from the provider's "2006-01-02" release
// date. Unparseable or empty dates yield zero.
func releaseYear(date string) int {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0
	}
	return t.Year()
}
