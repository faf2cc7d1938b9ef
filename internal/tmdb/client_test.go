package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMovies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "fight club", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"id":550,"original_title":"Fight Club","poster_path":"/pB8B.jpg","release_date":"1999-10-15"},
			{"id":551,"original_title":"No Poster","poster_path":"","release_date":""}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	movies, err := c.SearchMovies(context.Background(), "fight club")
	require.NoError(t, err)
	require.Len(t, movies, 2)

	assert.Equal(t, uint64(550), movies[0].TMDBID)
	assert.Equal(t, "Fight Club", movies[0].Title)
	assert.Equal(t, "https://image.tmdb.org/t/p/original/pB8B.jpg", movies[0].PosterPath)
	assert.Equal(t, 1999, movies[0].Year)

	// Missing poster and date degrade to zero values, not errors.
	assert.Equal(t, "", movies[1].PosterPath)
	assert.Equal(t, 0, movies[1].Year)
}

func TestMovieDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/550", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":550,
			"original_title":"Fight Club",
			"poster_path":"/pB8B.jpg",
			"release_date":"1999-10-15",
			"runtime":139,
			"overview":"An insomniac office worker...",
			"genres":[{"id":18,"name":"Drama"},{"id":53,"name":"Thriller"}]
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	d, err := c.MovieDetail(context.Background(), 550)
	require.NoError(t, err)

	assert.Equal(t, uint64(550), d.TMDBID)
	assert.Equal(t, "Fight Club", d.Title)
	assert.Equal(t, 139, d.Duration)
	assert.Equal(t, 1999, d.Year)
	assert.Equal(t, []string{"Drama", "Thriller"}, d.Genres)
}

func TestMovieDetailNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	_, err := c.MovieDetail(context.Background(), 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProviderErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	_, err := c.PopularMovies(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestReleaseYear(t *testing.T) {
	assert.Equal(t, 1999, releaseYear("1999-10-15"))
	assert.Equal(t, 0, releaseYear(""))
	assert.Equal(t, 0, releaseYear("not-a-date"))
}
