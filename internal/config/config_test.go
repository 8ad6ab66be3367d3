package config

import (
	"errors"
	"os"
	"testing"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	if err := os.Setenv(key, "8080"); err != nil {
		t.Fatalf("Setenv error: %v", err)
	}
	defer os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestLoadReadsTokenAndPort(t *testing.T) {
	_ = os.Setenv("APP_PORT", "1234")
	_ = os.Setenv("SCHEDULER_TOKEN", "secret")
	defer func() {
		_ = os.Unsetenv("APP_PORT")
		_ = os.Unsetenv("SCHEDULER_TOKEN")
	}()

	cfg := Load()
	if cfg.AppPort != "1234" {
		t.Fatalf("AppPort = %q, want %q", cfg.AppPort, "1234")
	}
	if cfg.SchedulerToken != "secret" {
		t.Fatalf("SchedulerToken = %q, want %q", cfg.SchedulerToken, "secret")
	}
}

func TestFeedSourcesSplitsAndTrims(t *testing.T) {
	cfg := &Config{FeedURLs: "https://a.example/rss, https://b.example/feed.xml , ,https://c.example/rss"}
	urls := cfg.FeedSources()
	want := []string{"https://a.example/rss", "https://b.example/feed.xml", "https://c.example/rss"}
	if len(urls) != len(want) {
		t.Fatalf("expected %d urls, got %d (%v)", len(want), len(urls), urls)
	}
	for i, u := range want {
		if urls[i] != u {
			t.Fatalf("urls[%d] = %q, want %q", i, urls[i], u)
		}
	}

	empty := &Config{FeedURLs: "  "}
	if got := empty.FeedSources(); len(got) != 0 {
		t.Fatalf("expected no urls for blank FEED_URLS, got %v", got)
	}
}

func TestSelectorsValidate(t *testing.T) {
	full := Selectors{Item: "article", Title: "h3 a", Link: "h3 a", Source: "div.src"}
	if err := full.Validate(); err != nil {
		t.Fatalf("valid selectors rejected: %v", err)
	}

	// Snippet selector is optional.
	if err := (Selectors{Item: "article", Title: "a", Link: "a", Source: "div"}).Validate(); err != nil {
		t.Fatalf("selectors without snippet rejected: %v", err)
	}

	cases := []struct {
		name string
		sel  Selectors
		want error
	}{
		{"missing item", Selectors{Title: "a", Link: "a", Source: "div"}, ErrMissingItemSelector},
		{"missing title", Selectors{Item: "article", Link: "a", Source: "div"}, ErrMissingTitleSelector},
		{"missing link", Selectors{Item: "article", Title: "a", Source: "div"}, ErrMissingLinkSelector},
		{"missing source", Selectors{Item: "article", Title: "a", Link: "a"}, ErrMissingSourceSelector},
	}
	for _, c := range cases {
		if err := c.sel.Validate(); !errors.Is(err, c.want) {
			t.Fatalf("%s: Validate() = %v, want %v", c.name, err, c.want)
		}
	}
}

func TestConfigValidateSkipsSelectorsWhenPageDisabled(t *testing.T) {
	cfg := &Config{NewsPageURL: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() with page source disabled = %v, want nil", err)
	}

	cfg = &Config{NewsPageURL: "https://news.example/", Selectors: Selectors{}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() with page enabled and empty selectors should fail")
	}
}
