package discogs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, searchBody, releaseBody string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Discogs token=test-token" {
			t.Errorf("Authorization = %q", got)
		}
		switch r.URL.Path {
		case "/database/search":
			if got := r.URL.Query().Get("type"); got != "release" {
				t.Errorf("type = %q, want release", got)
			}
			_, _ = w.Write([]byte(searchBody))
		case "/releases/42":
			_, _ = w.Write([]byte(releaseBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClient_Search(t *testing.T) {
	searchBody := `{"results":[{"id":42,"title":"Nirvana - Nevermind","thumb":"https://img.example/thumb.jpg"}]}`
	releaseBody := `{"title":"Nevermind","tracklist":[
		{"position":"A1","title":"Smells Like Teen Spirit"},
		{"position":"A2","title":"In Bloom"}],
		"images":[{"uri":"https://img.example/full.jpg","uri150":"https://img.example/150.jpg"}]}`

	srv := newTestServer(t, searchBody, releaseBody)
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")
	enrichment, err := client.Search(context.Background(), "Nirvana", "Nevermind")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if enrichment == nil {
		t.Fatal("expected a result")
	}

	// discogs_title comes from the search result ("Artist - Title" form).
	if enrichment.DiscogsTitle != "Nirvana - Nevermind" {
		t.Errorf("DiscogsTitle = %q", enrichment.DiscogsTitle)
	}
	if len(enrichment.Tracklist) != 2 || enrichment.Tracklist[0] != "A1 Smells Like Teen Spirit" {
		t.Errorf("Tracklist = %v", enrichment.Tracklist)
	}
	if enrichment.ImageURL != "https://img.example/150.jpg" {
		t.Errorf("ImageURL = %q", enrichment.ImageURL)
	}
}

func TestClient_SearchNotFound(t *testing.T) {
	srv := newTestServer(t, `{"results":[]}`, `{}`)
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")
	enrichment, err := client.Search(context.Background(), "Unknown", "Nothing")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if enrichment != nil {
		t.Errorf("expected nil for not found, got %+v", enrichment)
	}
}

func TestClient_SearchNoImages(t *testing.T) {
	searchBody := `{"results":[{"id":42,"title":"Nirvana - Bleach","thumb":"https://img.example/thumb.jpg"}]}`
	releaseBody := `{"title":"Bleach","tracklist":[{"position":"A1","title":"Blew"}],"images":[]}`

	srv := newTestServer(t, searchBody, releaseBody)
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")
	enrichment, err := client.Search(context.Background(), "Nirvana", "Bleach")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	// Falls back to the search thumbnail.
	if enrichment.ImageURL != "https://img.example/thumb.jpg" {
		t.Errorf("ImageURL = %q", enrichment.ImageURL)
	}
}

func TestClient_SearchEmptyQuery(t *testing.T) {
	client := NewClient("http://unused.example", "test-token")
	if _, err := client.Search(context.Background(), "", " "); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")
	if _, err := client.Search(context.Background(), "Nirvana", "Nevermind"); err == nil {
		t.Error("expected error for server failure")
	}
}
