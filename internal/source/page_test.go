package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newswatch/internal/config"
)

const samplePage = `<!DOCTYPE html>
<html><body>
  <article class="item">
    <h3><a class="headline" href="./stories/1">First headline</a></h3>
    <div class="publisher">Example Times</div>
    <span class="teaser">Teaser one.</span>
  </article>
  <article class="item">
    <h3><a class="headline" href="https://other.example/stories/2">Second headline</a></h3>
    <div class="publisher">Other Daily</div>
    <span class="teaser">Teaser two.</span>
  </article>
  <article class="item">
    <h3>No anchor here</h3>
    <div class="publisher">Broken Block</div>
  </article>
</body></html>`

func testSelectors() config.Selectors {
	return config.Selectors{
		Item:    "article.item",
		Title:   "a.headline",
		Link:    "a.headline",
		Source:  "div.publisher",
		Snippet: "span.teaser",
	}
}

func TestPageFetcherExtractsBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := NewPageFetcher(srv.URL, "newswatch-test/1.0", testSelectors())
	entries, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	// The block without any anchor is dropped, not an error.
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Kind != KindPage {
		t.Fatalf("Kind = %q, want %q", first.Kind, KindPage)
	}
	if first.Title != "First headline" {
		t.Fatalf("Title = %q", first.Title)
	}
	// Relative link resolved against the page URL.
	if first.Link != srv.URL+"/stories/1" {
		t.Fatalf("Link = %q, want %q", first.Link, srv.URL+"/stories/1")
	}
	if first.Source != "Example Times" {
		t.Fatalf("Source = %q", first.Source)
	}
	if first.Snippet != "Teaser one." {
		t.Fatalf("Snippet = %q", first.Snippet)
	}
	if first.Origin != srv.URL {
		t.Fatalf("Origin = %q", first.Origin)
	}

	if entries[1].Link != "https://other.example/stories/2" {
		t.Fatalf("absolute link should pass through unchanged, got %q", entries[1].Link)
	}
}

func TestPageFetcherZeroMatchesIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div>nothing matching here</div></body></html>`))
	}))
	defer srv.Close()

	entries, err := NewPageFetcher(srv.URL, "ua", testSelectors()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("zero matches must not be an error, got %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected 0 entries, got %d", len(entries))
	}
}

func TestPageFetcherHTTPFailureIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewPageFetcher(srv.URL, "ua", testSelectors()).Fetch(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch for HTTP 503, got %v", err)
	}
}

func TestPageFetcherFallsBackToFirstAnchor(t *testing.T) {
	page := `<html><body>
	  <article class="item">
	    <h3>Headline without the expected class</h3>
	    <a href="/fallback/story">read more</a>
	    <div class="publisher">Example Times</div>
	  </article>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	entries, err := NewPageFetcher(srv.URL, "ua", testSelectors()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry via anchor fallback, got %d", len(entries))
	}
	if !strings.HasSuffix(entries[0].Link, "/fallback/story") {
		t.Fatalf("Link = %q", entries[0].Link)
	}
}

func TestPageFetcherCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPageFetcher("https://news.example/", "ua", testSelectors()).Fetch(ctx)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch on canceled context, got %v", err)
	}
}
