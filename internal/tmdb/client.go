// Package tmdb is the client for the external movie metadata provider.
// The service mirrors provider records into the local movies table lazily;
// search and detail reads go straight to the provider.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when the provider has no movie for an id.
var ErrNotFound = errors.New("movie not found on provider")

// Client talks to the provider's REST API. The key is sent both as a
// query parameter and as a bearer header, matching what the provider
// accepts for v3 keys and v4 tokens respectively.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// New builds a Client. baseURL is injected so tests can use httptest.
func New(baseURL, apiKey string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type searchResult struct {
	ID            uint64 `json:"id"`
	OriginalTitle string `json:"original_title"`
	PosterPath    string `json:"poster_path"`
	ReleaseDate   string `json:"release_date"`
}

type movieDetail struct {
	ID            uint64 `json:"id"`
	OriginalTitle string `json:"original_title"`
	PosterPath    string `json:"poster_path"`
	ReleaseDate   string `json:"release_date"`
	Runtime       int    `json:"runtime"`
	Overview      string `json:"overview"`
	Genres        []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", "en-US")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("provider returned %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// SearchMovies queries the provider by title and returns parsed overviews.
func (c *Client) SearchMovies(ctx context.Context, title string) ([]MovieOverview, error) {
	var payload struct {
		Results []searchResult `json:"results"`
	}
	params := url.Values{}
	params.Set("query", title)
	if err := c.get(ctx, "/search/movie", params, &payload); err != nil {
		return nil, err
	}
	out := make([]MovieOverview, 0, len(payload.Results))
	for _, r := range payload.Results {
		out = append(out, parseOverview(r))
	}
	return out, nil
}

// MovieDetail fetches one movie by provider id. Unknown ids return
// ErrNotFound.
func (c *Client) MovieDetail(ctx context.Context, id uint64) (*MovieDetail, error) {
	var payload movieDetail
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), nil, &payload); err != nil {
		return nil, err
	}
	d := parseDetail(payload)
	return &d, nil
}

// PopularMovies returns the provider's current popular list as overviews.
func (c *Client) PopularMovies(ctx context.Context) ([]MovieOverview, error) {
	var payload struct {
		Results []searchResult `json:"results"`
	}
	if err := c.get(ctx, "/movie/popular", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]MovieOverview, 0, len(payload.Results))
	for _, r := range payload.Results {
		out = append(out, parseOverview(r))
	}
	return out, nil
}
