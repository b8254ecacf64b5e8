// Package edgar provides SEC EDGAR API integration: a rate-limited fetcher,
// firm search, Form D parsing, and filing history aggregation.
// API Documentation: https://www.sec.gov/developer
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultDataURL hosts the submissions API.
	DefaultDataURL = "https://data.sec.gov"

	// DefaultArchivesURL hosts filing documents and the company browse API.
	DefaultArchivesURL = "https://www.sec.gov"

	// DefaultSearchURL is the full-text search endpoint.
	DefaultSearchURL = "https://efts.sec.gov/LATEST/search-index"

	// DefaultUserAgent identifies this client per SEC guidelines.
	DefaultUserAgent = "fundscout/1.0 (research@fundscout.dev)"

	// DefaultRateLimit is the SEC's published ceiling (requests/second).
	DefaultRateLimit = 10

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second
)

// StatusError is returned for non-2xx responses. Callers decide whether a
// given status is fatal; the client never retries.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("edgar: status %d for %s", e.StatusCode, e.URL)
}

// IsNotFound reports whether err is a StatusError for a 404.
func IsNotFound(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.StatusCode == http.StatusNotFound
}

// Client is a rate-limited SEC EDGAR client. Every outbound request waits
// on the shared limiter, so the per-authority spacing invariant holds no
// matter which component issues the call.
type Client struct {
	dataURL     string
	archivesURL string
	searchURL   string
	userAgent   string
	minYear     int
	fundTerms   []string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithUserAgent sets the identifying User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit sets the request ceiling in requests per second. Burst
// stays at 1 so consecutive calls keep the full minimum interval.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1) }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithEndpoints overrides the three EDGAR hosts. Intended for tests.
func WithEndpoints(dataURL, archivesURL, searchURL string) Option {
	return func(c *Client) {
		c.dataURL = dataURL
		c.archivesURL = archivesURL
		c.searchURL = searchURL
	}
}

// WithMinYear sets the earliest relevant filing year for searches.
func WithMinYear(year int) Option {
	return func(c *Client) { c.minYear = year }
}

// WithFundVocabulary sets the fund-likeness vocabulary used by the firm
// search precision filter.
func WithFundVocabulary(terms []string) Option {
	return func(c *Client) { c.fundTerms = terms }
}

// NewClient creates a new SEC EDGAR client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		dataURL:     DefaultDataURL,
		archivesURL: DefaultArchivesURL,
		searchURL:   DefaultSearchURL,
		userAgent:   DefaultUserAgent,
		minYear:     2016,
		fundTerms:   defaultFundTerms,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultFundTerms = []string{
	"venture", "capital", "partners", "fund", "l.p.", "lp",
	"management", "investors", "holdings", "equity",
}

// get performs a rate-limited GET and returns the raw body.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	log.Debug().Str("url", rawURL).Msg("edgar request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("edgar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// FetchDocument retrieves a raw filing document by URL, subject to the
// same rate limit and identifying header as every other call.
func (c *Client) FetchDocument(ctx context.Context, docURL string) ([]byte, error) {
	return c.get(ctx, docURL, nil)
}

// getJSON performs a rate-limited GET and decodes the JSON body.
func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, v interface{}) error {
	body, err := c.get(ctx, rawURL, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
