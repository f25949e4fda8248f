package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key")
	c.baseURL = srv.URL
	return c
}

func TestLookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Aspirin medicine information" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		fmt.Fprint(w, `{"items":[{"id":{"videoId":"abc123"},"snippet":{"title":"Aspirin Explained","channelTitle":"Pharmacy Basics"}}]}`)
	})

	video, err := c.Lookup(context.Background(), "Aspirin")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if video == nil {
		t.Fatal("Lookup returned no video")
	}
	if video.ID != "abc123" || video.Title != "Aspirin Explained" || video.Channel != "Pharmacy Basics" {
		t.Errorf("video = %+v", video)
	}
	if video.URL() != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("URL = %q", video.URL())
	}
}

func TestLookupNoResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	})

	video, err := c.Lookup(context.Background(), "Obscurium")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if video != nil {
		t.Errorf("Lookup returned %+v, want nil", video)
	}
}

func TestLookupAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"message":"quota exceeded"}}`)
	})

	if _, err := c.Lookup(context.Background(), "Aspirin"); err == nil {
		t.Error("Lookup with API error succeeded, want error")
	}
}

func TestLookupMissingKey(t *testing.T) {
	c := NewClient("")

	if _, err := c.Lookup(context.Background(), "Aspirin"); err == nil {
		t.Error("Lookup without an API key succeeded, want error")
	}
}
