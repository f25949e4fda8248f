// Package youtube looks up a single educational video for a medication via
// the YouTube Data API v3.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Video is the top search result for a medication query.
type Video struct {
	ID      string
	Title   string
	Channel string
}

// URL returns the watch link for the video.
func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// Client queries the YouTube Data API search endpoint.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a YouTube search client with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

// Lookup returns the top video for "{item} medicine information", or nil
// if nothing relevant was found.
func (c *Client) Lookup(ctx context.Context, item string) (*Video, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("youtube API key is not configured (set YOUTUBE_API_KEY)")
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", "1")
	params.Set("q", fmt.Sprintf("%s medicine information", item))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube API error (status %d): %s", resp.StatusCode, string(body))
	}

	var search searchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(search.Items) == 0 {
		return nil, nil
	}

	top := search.Items[0]
	return &Video{
		ID:      top.ID.VideoID,
		Title:   top.Snippet.Title,
		Channel: top.Snippet.ChannelTitle,
	}, nil
}
