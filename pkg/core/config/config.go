// Package config holds runtime configuration for the scout.
// Defaults cover normal operation; an optional hjson file and a small set
// of environment variables override them.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/hjson/hjson-go/v4"
)

// Config is the full runtime configuration.
type Config struct {
	// SEC EDGAR access. The SEC requires an identifying User-Agent with
	// contact information and caps clients at 10 requests/second.
	UserAgent string  `json:"user_agent"`
	RateLimit float64 `json:"rate_limit"`

	// MinYear is the earliest year considered relevant when searching for
	// firms. Filings older than this are treated as stale.
	MinYear int `json:"min_year"`

	// FundTerms is the vocabulary a candidate's display name must contain
	// at least one of to be considered a fund. Precision heuristic, tunable.
	FundTerms []string `json:"fund_terms"`

	// ExcludedSectors rejects S-1 issuers in sectors implausible for
	// venture-backed exits. Precision heuristic, tunable.
	ExcludedSectors []string `json:"excluded_sectors"`

	// RSSFeeds maps source name to feed URL for press-release polling.
	RSSFeeds map[string]string `json:"rss_feeds"`

	// Cache TTLs per logical region.
	FirmCacheTTL   time.Duration `json:"-"`
	FilingCacheTTL time.Duration `json:"-"`
	RSSCacheTTL    time.Duration `json:"-"`

	FirmCacheHours   int `json:"firm_cache_hours"`
	FilingCacheHours int `json:"filing_cache_hours"`

	// DatabaseURL enables the profile persistence shim when set.
	DatabaseURL string `json:"database_url"`
}

// Default returns the baseline configuration.
func Default() *Config {
	cfg := &Config{
		UserAgent: "fundscout/1.0 (research@fundscout.dev)",
		RateLimit: 10, // SEC's published ceiling
		MinYear:   2016,
		FundTerms: []string{
			"venture", "capital", "partners", "fund", "l.p.", "lp",
			"management", "investors", "holdings", "equity",
		},
		ExcludedSectors: []string{
			"real estate", "realty", "reit", "bank", "bancorp", "bancshares",
			"oil", "gas", "petroleum", "energy", "mining", "drilling",
			"steel", "industries", "utility", "utilities", "pipeline",
			"restaurant", "gaming", "casino", "acquisition corp",
			"acquisition corporation", "blank check", "spac",
		},
		RSSFeeds: map[string]string{
			"prnewswire":    "https://www.prnewswire.com/rss/financial-services-latest-news.rss",
			"businesswire":  "https://feed.businesswire.com/rss/home/?rss=G1QFDERJXkJeEFpRWg==",
			"globenewswire": "https://www.globenewswire.com/RssFeed/subjectcode/25-Financing%20Agreements/feedTitle/GlobeNewswire%20-%20Financing%20Agreements",
		},
		FirmCacheHours:   24,
		FilingCacheHours: 6,
		RSSCacheTTL:      30 * time.Minute,
	}
	cfg.applyDerived()
	return cfg
}

// Load builds the configuration from defaults, an optional hjson file, and
// environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.applyDerived()
	return cfg, nil
}

// applyFile overlays values from an hjson config file.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	// hjson decodes into a generic map; round-trip through JSON to fill
	// the struct so unset keys keep their defaults.
	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("convert config %s: %w", path, err)
	}
	if err := json.Unmarshal(jsonData, c); err != nil {
		return fmt.Errorf("apply config %s: %w", path, err)
	}
	return nil
}

// FeedURLs returns the configured RSS feed URLs in stable order.
func (c *Config) FeedURLs() []string {
	urls := make([]string, 0, len(c.RSSFeeds))
	for _, u := range c.RSSFeeds {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

func (c *Config) applyEnv() {
	if v := os.Getenv("EDGAR_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("EDGAR_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.RateLimit = f
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
}

func (c *Config) applyDerived() {
	if c.FirmCacheHours > 0 {
		c.FirmCacheTTL = time.Duration(c.FirmCacheHours) * time.Hour
	}
	if c.FilingCacheHours > 0 {
		c.FilingCacheTTL = time.Duration(c.FilingCacheHours) * time.Hour
	}
	if c.RSSCacheTTL == 0 {
		c.RSSCacheTTL = 30 * time.Minute
	}
}
