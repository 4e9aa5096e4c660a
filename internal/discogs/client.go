// Package discogs looks up canonical release metadata for identified
// albums in the Discogs database.
package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/averageanalysis/vinyl-recorder/internal/constants"
	"github.com/averageanalysis/vinyl-recorder/internal/domain"
	"github.com/averageanalysis/vinyl-recorder/internal/httpclient"
)

const DefaultUserAgent = "vinyl-recorder/1.0"

// Client queries the Discogs REST API with a personal access token.
type Client struct {
	httpClient *httpclient.Client
	baseURL    string
	token      string
	userAgent  string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		userAgent:  DefaultUserAgent,
		httpClient: httpclient.New(nil, constants.DiscogsRequestInterval),
	}
}

// Search looks the album up and returns its canonical title, track list
// and cover thumbnail. A nil result with a nil error means "not found".
func (c *Client) Search(ctx context.Context, artist, album string) (*domain.Enrichment, error) {
	query := strings.TrimSpace(artist + " " + album)
	if query == "" {
		return nil, fmt.Errorf("discogs: artist and album required")
	}

	u := fmt.Sprintf("%s/database/search?q=%s&type=release&per_page=5",
		c.baseURL, url.QueryEscape(query))

	var search searchResponse
	if err := c.getJSON(ctx, u, &search); err != nil {
		return nil, err
	}
	if len(search.Results) == 0 {
		return nil, nil
	}

	first := search.Results[0]
	enrichment := &domain.Enrichment{
		DiscogsTitle: first.Title,
		ImageURL:     first.Thumb,
	}

	// The search result carries no track list; fetch the release itself.
	rel, err := c.getRelease(ctx, first.ID)
	if err != nil {
		return nil, err
	}
	for _, track := range rel.Tracklist {
		enrichment.Tracklist = append(enrichment.Tracklist,
			strings.TrimSpace(track.Position+" "+track.Title))
	}
	if len(rel.Images) > 0 && rel.Images[0].URI150 != "" {
		enrichment.ImageURL = rel.Images[0].URI150
	}

	return enrichment, nil
}

func (c *Client) getRelease(ctx context.Context, id int64) (*releaseResponse, error) {
	u := fmt.Sprintf("%s/releases/%d", c.baseURL, id)
	var rel releaseResponse
	if err := c.getJSON(ctx, u, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("discogs: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Discogs token="+c.token)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("discogs: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discogs returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("discogs: decode response: %w", err)
	}
	return nil
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Thumb      string `json:"thumb"`
	CoverImage string `json:"cover_image"`
}

type releaseResponse struct {
	Title     string         `json:"title"`
	Tracklist []releaseTrack `json:"tracklist"`
	Images    []releaseImage `json:"images"`
}

type releaseTrack struct {
	Position string `json:"position"`
	Title    string `json:"title"`
}

type releaseImage struct {
	URI    string `json:"uri"`
	URI150 string `json:"uri150"`
}
