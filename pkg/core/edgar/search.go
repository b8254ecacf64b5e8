package edgar

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/phuslu/log"
)

// =============================================================================
// FIRM SEARCH (ENTITY RESOLUTION)
// =============================================================================
//
// A free-text firm name rarely matches an SEC entity name exactly, so the
// resolver unions two sources: the company-name browse API queried with
// name variations, and the full-text index over Form D filings queried with
// the literal phrase. Candidates are then filtered down to entities that
// plausibly are venture funds with recent activity.

var cikPattern = regexp.MustCompile(`(?i)<cik>(\d+)</cik>`)

// nameVariations expands a query into the search terms worth trying:
// the literal query, a Capital<->Ventures substitution, and the first word
// alone for multi-word queries.
func nameVariations(query string) []string {
	variations := []string{query}
	lower := strings.ToLower(query)

	if strings.Contains(lower, "capital") {
		variations = append(variations, titleCase(strings.ReplaceAll(lower, "capital", "ventures")))
	} else if strings.Contains(lower, "ventures") {
		variations = append(variations, titleCase(strings.ReplaceAll(lower, "ventures", "capital")))
	}

	words := strings.Fields(query)
	if len(words) > 1 {
		variations = append(variations, words[0])
	}
	return variations
}

// titleCase upper-cases the first letter of each space-separated word, the
// casing the browse API expects for company names.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// companyInfo summarizes a CIK's Form D activity from the submissions API.
type companyInfo struct {
	Name         string
	CIK          string
	FilingCount  int
	RecentFiling string
}

func (c *Client) fetchCompanyInfo(ctx context.Context, cik string) (*companyInfo, error) {
	var resp SubmissionsResponse
	u := fmt.Sprintf("%s/submissions/CIK%s.json", c.dataURL, padCIK(cik))
	if err := c.getJSON(ctx, u, nil, &resp); err != nil {
		return nil, err
	}

	recent := resp.Filings.Recent
	count := 0
	latest := ""
	for i, form := range recent.Form {
		if form != "D" && form != "D/A" {
			continue
		}
		count++
		if i < len(recent.FilingDate) && recent.FilingDate[i] > latest {
			latest = recent.FilingDate[i]
		}
	}

	return &companyInfo{
		Name:         resp.Name,
		CIK:          strings.TrimLeft(cik, "0"),
		FilingCount:  count,
		RecentFiling: latest,
	}, nil
}

// FullTextSearch queries the full-text index for an exact phrase within a
// form type and date window.
func (c *Client) FullTextSearch(ctx context.Context, phrase, forms, startDate, endDate string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%q", phrase))
	params.Set("forms", forms)
	params.Set("dateRange", "custom")
	params.Set("startdt", startDate)
	params.Set("enddt", endDate)

	var resp SearchResponse
	if err := c.getJSON(ctx, c.searchURL, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchFirms resolves a free-text query into ranked firm candidates.
// Sub-query failures are logged and skipped; the overall search only fails
// on an empty query.
func (c *Client) SearchFirms(ctx context.Context, query string, maxResults int) ([]FirmResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	// Union CIKs from both sources, preserving first-seen order so ties
	// later keep a stable ranking.
	var cikOrder []string
	seenCIKs := make(map[string]bool)
	addCIK := func(cik string) {
		clean := strings.TrimLeft(cik, "0")
		if clean == "" || seenCIKs[clean] {
			return
		}
		seenCIKs[clean] = true
		cikOrder = append(cikOrder, clean)
	}

	// Source 1: company-name browse API, one query per name variation.
	for _, term := range nameVariations(query) {
		params := url.Values{}
		params.Set("action", "getcompany")
		params.Set("company", term)
		params.Set("type", "D")
		params.Set("output", "atom")

		body, err := c.get(ctx, c.archivesURL+"/cgi-bin/browse-edgar", params)
		if err != nil {
			log.Warn().Err(err).Str("term", term).Msg("company search failed")
			continue
		}
		matches := cikPattern.FindAllStringSubmatch(string(body), 50)
		for _, m := range matches {
			addCIK(m[1])
		}
	}

	// Source 2: full-text search over Form D filings with the literal query.
	startDate := fmt.Sprintf("%d-01-01", c.minYear)
	endDate := time.Now().UTC().Format("2006-01-02")
	if resp, err := c.FullTextSearch(ctx, query, "D", startDate, endDate); err != nil {
		log.Warn().Err(err).Str("query", query).Msg("full-text search failed")
	} else {
		for _, hit := range resp.Hits.Hits {
			for _, cik := range hit.Source.CIKs {
				addCIK(cik)
			}
		}
	}

	// Resolve each candidate CIK, with a fan-out cap so a broad query
	// cannot trigger hundreds of submissions fetches.
	fanout := maxResults * 5
	if len(cikOrder) > fanout {
		cikOrder = cikOrder[:fanout]
	}

	queryWords := strings.Fields(strings.ToLower(query))
	minCutoff := fmt.Sprintf("%d-01-01", c.minYear)
	seenNames := make(map[string]bool)

	var results []FirmResult
	for _, cik := range cikOrder {
		info, err := c.fetchCompanyInfo(ctx, cik)
		if err != nil {
			log.Warn().Err(err).Str("cik", cik).Msg("company info fetch failed")
			continue
		}
		if info.FilingCount == 0 {
			continue
		}
		if info.RecentFiling != "" && info.RecentFiling < minCutoff {
			continue
		}

		nameLower := strings.ToLower(info.Name)

		// Exact-name dedupe; legal-entity suffixes stay significant, so
		// "X LP" and "X LLC" remain distinct candidates.
		if seenNames[nameLower] {
			continue
		}

		if !containsAny(nameLower, queryWords) {
			continue
		}
		if !containsAny(nameLower, c.fundTerms) {
			continue
		}

		seenNames[nameLower] = true
		results = append(results, FirmResult{
			CIK:          info.CIK,
			Name:         info.Name,
			RecentFiling: info.RecentFiling,
			FilingCount:  info.FilingCount,
		})
	}

	// Most recent filing first; undated entities sort last. Stable, so
	// tied candidates keep union order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RecentFiling > results[j].RecentFiling
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// padCIK zero-pads a CIK to the 10 digits the submissions API expects.
func padCIK(cik string) string {
	return fmt.Sprintf("%010s", strings.TrimLeft(cik, "0"))
}
