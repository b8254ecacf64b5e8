// Package adv looks up SEC Form ADV (investment adviser) registrations
// through the public IAPD API. ADV data carries what Form D never does:
// assets under management, headcount, and disclosure history.
package adv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/phuslu/log"
)

const (
	defaultSearchURL = "https://api.adviserinfo.sec.gov/IAPD/Content/Search/api/PublicSearch/Search"
	defaultFirmURL   = "https://api.adviserinfo.sec.gov/IAPD/Content/Common/api/Firm/%s"
	defaultTimeout   = 15 * time.Second
)

// Info is a firm's Form ADV registration summary.
type Info struct {
	FirmName            string `json:"firm_name"`
	CRDNumber           string `json:"crd_number"`
	SECNumber           string `json:"sec_number"`
	AUM                 *int64 `json:"aum"`
	AUMDate             string `json:"aum_date"`
	EmployeeCount       *int64 `json:"employee_count"`
	State               string `json:"state"`
	RegistrationStatus  string `json:"registration_status"`
	HasDisclosureEvents bool   `json:"has_disclosure_events"`
	BrochureURL         string `json:"brochure_url"`
}

// SearchResult is a single adviser search hit.
type SearchResult struct {
	Name           string
	CRDNumber      string
	SECNumber      string
	AUM            *int64
	State          string
	HasDisclosures bool
}

// Client talks to the IAPD API. IAPD is a different authority than EDGAR
// with no published rate ceiling, so it uses its own plain HTTP client.
type Client struct {
	searchURL  string
	firmURL    string // format string taking a CRD number
	userAgent  string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithEndpoints overrides the IAPD endpoints. Intended for tests.
func WithEndpoints(searchURL, firmURL string) Option {
	return func(c *Client) {
		c.searchURL = searchURL
		c.firmURL = firmURL
	}
}

// NewClient creates an IAPD client with the given identifying User-Agent.
func NewClient(userAgent string, opts ...Option) *Client {
	c := &Client{
		searchURL:  defaultSearchURL,
		firmURL:    defaultFirmURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchPayload struct {
	FirmName      string `json:"firmName"`
	PageNumber    int    `json:"pageNumber"`
	PageSize      int    `json:"pageSize"`
	SortColumn    string `json:"sortColumn"`
	SortDirection string `json:"sortDirection"`
}

type searchResponse struct {
	Results []struct {
		Names []struct {
			Value string `json:"Value"`
		} `json:"Names"`
		CRDNumber     string `json:"CrdNumber"`
		SECNumber     string `json:"SecNumber"`
		AUM           *int64 `json:"AUM"`
		State         string `json:"State"`
		HasDisclosure bool   `json:"HasDisclosure"`
	} `json:"Results"`
}

// Search finds advisers by firm name. Failures degrade to an empty list.
func (c *Client) Search(ctx context.Context, firmName string) []SearchResult {
	payload, err := json.Marshal(searchPayload{
		FirmName:      firmName,
		PageNumber:    1,
		PageSize:      10,
		SortColumn:    "relevance",
		SortDirection: "desc",
	})
	if err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(payload))
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("form adv search failed")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Warn().Err(err).Msg("form adv response malformed")
		return nil
	}

	var results []SearchResult
	for _, hit := range parsed.Results {
		name := ""
		if len(hit.Names) > 0 {
			name = hit.Names[0].Value
		}
		results = append(results, SearchResult{
			Name:           name,
			CRDNumber:      hit.CRDNumber,
			SECNumber:      hit.SECNumber,
			AUM:            hit.AUM,
			State:          hit.State,
			HasDisclosures: hit.HasDisclosure,
		})
	}
	return results
}

type firmResponse struct {
	Names []struct {
		Value string `json:"Value"`
	} `json:"Names"`
	SECNumber          string `json:"SecNumber"`
	AUM                *int64 `json:"AUM"`
	AUMDate            string `json:"AUMDate"`
	NumberOfEmployees  *int64 `json:"NumberOfEmployees"`
	State              string `json:"State"`
	RegistrationStatus string `json:"RegistrationStatus"`
	HasDisclosure      bool   `json:"HasDisclosure"`
	HasBrochure        bool   `json:"HasBrochure"`
}

// Details fetches the full ADV record for a CRD number. Returns nil on any
// failure.
func (c *Client) Details(ctx context.Context, crdNumber string) *Info {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(c.firmURL, crdNumber), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("crd", crdNumber).Msg("form adv details failed")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	var parsed firmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}

	info := &Info{
		CRDNumber:           crdNumber,
		SECNumber:           parsed.SECNumber,
		AUM:                 parsed.AUM,
		AUMDate:             parsed.AUMDate,
		EmployeeCount:       parsed.NumberOfEmployees,
		State:               parsed.State,
		RegistrationStatus:  parsed.RegistrationStatus,
		HasDisclosureEvents: parsed.HasDisclosure,
	}
	if info.RegistrationStatus == "" {
		info.RegistrationStatus = "Unknown"
	}
	if len(parsed.Names) > 0 {
		info.FirmName = parsed.Names[0].Value
	}
	if parsed.HasBrochure {
		info.BrochureURL = fmt.Sprintf(
			"https://adviserinfo.sec.gov/IAPD/Content/Common/api/Brochure?ProgramId=1&CrdNumber=%s", crdNumber)
	}
	return info
}

// ForFirm searches by name and returns details for the best match, or nil
// when nothing is registered under a similar name.
func (c *Client) ForFirm(ctx context.Context, firmName string) *Info {
	results := c.Search(ctx, firmName)
	if len(results) == 0 {
		return nil
	}
	best := results[0]
	if best.CRDNumber == "" {
		return nil
	}
	return c.Details(ctx, best.CRDNumber)
}
