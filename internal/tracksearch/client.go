// Package tracksearch finds recorded tracks that suit a drawing's mood
// through the Spotify Web API.
package tracksearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultAPIURL   = "https://api.spotify.com"

	// DefaultLimit is the number of tracks returned when the caller
	// passes a non-positive limit.
	DefaultLimit = 5
	MaxLimit     = 50
)

var (
	ErrNotConfigured = errors.New("track search credentials not configured")
	ErrEmptyQuery    = errors.New("search query is empty")
)

// Track is one search result.
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	CoverURL    string   `json:"cover_url,omitempty"`
	PreviewURL  string   `json:"preview_url,omitempty"`
	ExternalURL string   `json:"external_url,omitempty"`
	DurationMs  int      `json:"duration_ms"`
}

// Config holds client credentials and endpoint overrides.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIURL       string
}

// Client searches the catalogue. Tokens are fetched on first use and
// refreshed by the oauth2 transport when they expire.
type Client struct {
	apiURL string
	http   *http.Client
}

// NewClient returns a client for cfg. A client without credentials is
// valid but every search returns ErrNotConfigured.
func NewClient(ctx context.Context, cfg Config) *Client {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return &Client{}
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	return &Client{
		apiURL: strings.TrimRight(cfg.APIURL, "/"),
		http:   cc.Client(ctx),
	}
}

// Configured reports whether the client has credentials.
func (c *Client) Configured() bool {
	return c != nil && c.http != nil
}

type searchResponse struct {
	Tracks struct {
		Items []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name   string `json:"name"`
				Images []struct {
					URL string `json:"url"`
				} `json:"images"`
			} `json:"album"`
			PreviewURL   string `json:"preview_url"`
			ExternalURLs struct {
				Spotify string `json:"spotify"`
			} `json:"external_urls"`
			DurationMs int `json:"duration_ms"`
		} `json:"items"`
	} `json:"tracks"`
}

// Search returns up to limit tracks matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Track, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/v1/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search tracks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search tracks: unexpected status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	tracks := make([]Track, 0, len(body.Tracks.Items))
	for _, item := range body.Tracks.Items {
		t := Track{
			ID:          item.ID,
			Name:        item.Name,
			Album:       item.Album.Name,
			PreviewURL:  item.PreviewURL,
			ExternalURL: item.ExternalURLs.Spotify,
			DurationMs:  item.DurationMs,
		}
		for _, a := range item.Artists {
			t.Artists = append(t.Artists, a.Name)
		}
		if len(item.Album.Images) > 0 {
			t.CoverURL = item.Album.Images[0].URL
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}
