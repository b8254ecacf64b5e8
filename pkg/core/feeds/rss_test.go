package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Venture Wire</title>
    <item>
      <title>Example Ventures closes $200M Fund III</title>
      <link>https://example.com/fund-iii</link>
      <pubDate>Mon, 03 Jun 2024 10:00:00 +0000</pubDate>
      <description>&lt;p&gt;Example Ventures announced a &lt;b&gt;$200M&lt;/b&gt; fund.&lt;/p&gt;</description>
    </item>
    <item>
      <title>Acme Robotics raises Series B</title>
      <link>https://example.com/acme</link>
      <pubDate>Tue, 04 Jun 2024 10:00:00 +0000</pubDate>
      <description>Led by Other Capital.</description>
    </item>
  </channel>
</rss>`

func newFeedServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleRSS)
	}))
}

func TestFetchFeed(t *testing.T) {
	server := newFeedServer()
	defer server.Close()

	agg := NewAggregator([]string{server.URL}, "test/1.0")
	releases, err := agg.FetchFeed(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchFeed failed: %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(releases))
	}
	if releases[0].Source != "Venture Wire" {
		t.Errorf("Expected feed title as source, got %q", releases[0].Source)
	}
	if releases[0].PublishedAt.IsZero() {
		t.Error("Expected parsed publish date")
	}
	// HTML in descriptions is stripped to plain text.
	if releases[0].Summary != "Example Ventures announced a $200M fund." {
		t.Errorf("Expected stripped summary, got %q", releases[0].Summary)
	}
}

func TestSearchReleases(t *testing.T) {
	server := newFeedServer()
	defer server.Close()

	agg := NewAggregator([]string{server.URL}, "test/1.0")
	matches := agg.SearchReleases(context.Background(), "example ventures", 10)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].Title != "Example Ventures closes $200M Fund III" {
		t.Errorf("Unexpected match %q", matches[0].Title)
	}
}

func TestSearchReleasesEmptyQueryReturnsAll(t *testing.T) {
	server := newFeedServer()
	defer server.Close()

	agg := NewAggregator([]string{server.URL}, "test/1.0")
	matches := agg.SearchReleases(context.Background(), "", 10)
	if len(matches) != 2 {
		t.Fatalf("Expected all items for empty query, got %d", len(matches))
	}
	// Most recent first.
	if matches[0].Title != "Acme Robotics raises Series B" {
		t.Errorf("Expected newest item first, got %q", matches[0].Title)
	}
}

func TestSearchReleasesSkipsDeadFeeds(t *testing.T) {
	live := newFeedServer()
	defer live.Close()
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer dead.Close()

	agg := NewAggregator([]string{dead.URL, live.URL}, "test/1.0")
	matches := agg.SearchReleases(context.Background(), "", 10)
	if len(matches) != 2 {
		t.Errorf("A dead feed should not break the search, got %d matches", len(matches))
	}
}

func TestStripHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<p>one <b>two</b></p>", "one two"},
		{"  padded  ", "padded"},
		{"<p>collapses   internal\n\twhitespace</p>", "collapses internal whitespace"},
	}
	for _, c := range cases {
		if got := stripHTML(c.in); got != c.want {
			t.Errorf("stripHTML(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}
