// Package feeds aggregates venture press coverage from RSS. Fund
// announcements often hit the trades weeks before the Form D shows up on
// EDGAR, so feed hits complement the filing-based view.
package feeds

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/phuslu/log"
)

// DefaultFeeds are the venture trade feeds polled when the config names
// none.
var DefaultFeeds = []string{
	"https://techcrunch.com/category/venture/feed/",
	"https://news.crunchbase.com/feed/",
	"https://www.finsmes.com/feed",
}

// PressRelease is one normalized feed item.
type PressRelease struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Summary     string    `json:"summary"`
}

// Aggregator fetches and filters a fixed set of feeds.
type Aggregator struct {
	feedURLs []string
	parser   *gofeed.Parser
}

// NewAggregator creates an Aggregator over the given feed URLs, falling
// back to DefaultFeeds when none are given.
func NewAggregator(feedURLs []string, userAgent string) *Aggregator {
	if len(feedURLs) == 0 {
		feedURLs = DefaultFeeds
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &Aggregator{feedURLs: feedURLs, parser: parser}
}

// FetchFeed pulls and normalizes a single feed.
func (a *Aggregator) FetchFeed(ctx context.Context, feedURL string) ([]PressRelease, error) {
	feed, err := a.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	source := feed.Title
	if source == "" {
		source = feedURL
	}

	releases := make([]PressRelease, 0, len(feed.Items))
	for _, item := range feed.Items {
		published := time.Time{}
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			published = item.UpdatedParsed.UTC()
		}
		releases = append(releases, PressRelease{
			Source:      source,
			Title:       strings.TrimSpace(item.Title),
			URL:         item.Link,
			PublishedAt: published,
			Summary:     stripHTML(item.Description),
		})
	}
	return releases, nil
}

// SearchReleases fetches every configured feed and returns items whose
// title or summary mentions the query, most recent first. A failing feed
// is logged and skipped rather than failing the whole search.
func (a *Aggregator) SearchReleases(ctx context.Context, query string, limit int) []PressRelease {
	needle := strings.ToLower(strings.TrimSpace(query))
	var matches []PressRelease

	for _, feedURL := range a.feedURLs {
		releases, err := a.FetchFeed(ctx, feedURL)
		if err != nil {
			log.Warn().Err(err).Str("feed", feedURL).Msg("feed fetch failed")
			continue
		}
		for _, r := range releases {
			if needle == "" ||
				strings.Contains(strings.ToLower(r.Title), needle) ||
				strings.Contains(strings.ToLower(r.Summary), needle) {
				matches = append(matches, r)
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].PublishedAt.After(matches[j].PublishedAt)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// stripHTML reduces a feed summary to plain text. Feed descriptions are
// routinely full HTML fragments.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
}
