// Package s1 mines SEC S-1 registration statements for portfolio-company
// exits. An S-1's "Principal Stockholders" section names the investors on
// the cap table, so a full-text hit for a firm name inside an S-1 usually
// means a portfolio company going public.
package s1

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/phuslu/log"

	"fundscout/pkg/core/edgar"
)

// Hit is one S-1 filing that plausibly names the firm as an investor.
type Hit struct {
	CompanyName string `json:"company_name"`
	CIK         string `json:"cik"`
	FilingDate  string `json:"filing_date"`
	FormType    string `json:"form_type"`
	Accession   string `json:"accession"`
	URL         string `json:"url"`
}

// searchStartDate bounds the S-1 window; IPO mentions older than this are
// rarely actionable.
const searchStartDate = "2015-01-01"

var defaultExcludedSectors = []string{
	"real estate", "realty", "reit", "bank", "bancorp", "bancshares",
	"oil", "gas", "petroleum", "energy", "mining", "drilling",
	"steel", "industries", "utility", "utilities", "pipeline",
	"restaurant", "gaming", "casino", "acquisition corp",
	"acquisition corporation", "blank check", "spac",
}

// Miner searches the full-text index for S-1 mentions of a firm.
type Miner struct {
	client          *edgar.Client
	excludedSectors []string
}

// Option configures the Miner.
type Option func(*Miner)

// WithExcludedSectors overrides the sector exclusion vocabulary.
func WithExcludedSectors(terms []string) Option {
	return func(m *Miner) { m.excludedSectors = terms }
}

// NewMiner creates a Miner backed by the given EDGAR client.
func NewMiner(client *edgar.Client, opts ...Option) *Miner {
	m := &Miner{
		client:          client,
		excludedSectors: defaultExcludedSectors,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var firmSuffixPattern = regexp.MustCompile(`(?i),?\s+(l\.?p\.?|llc|l\.l\.c\.|inc\.?)\s*$`)

// normalizeFirmName strips trailing legal-entity suffixes so the search
// phrase matches how an S-1 names the investor ("Sequoia Capital", not
// "Sequoia Capital Operations, LLC").
func normalizeFirmName(name string) string {
	name = strings.TrimSpace(name)
	for {
		stripped := firmSuffixPattern.ReplaceAllString(name, "")
		stripped = strings.TrimRight(strings.TrimSpace(stripped), ",")
		if stripped == name || stripped == "" {
			return name
		}
		name = stripped
	}
}

// firstTwoWords lower-cases and truncates a name to its first two words,
// the granularity used for the self-match guard and company dedupe.
func firstTwoWords(name string) string {
	words := strings.Fields(strings.ToLower(name))
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

// SearchMentions finds S-1 filings that plausibly name the firm as an
// investor, most recent first. Failures degrade to an empty list.
func (m *Miner) SearchMentions(ctx context.Context, firmName string, limit int) []Hit {
	normalized := normalizeFirmName(firmName)
	if normalized == "" {
		return nil
	}

	// A single-word name ("Benchmark") matches far too much; search the
	// common two-word fund phrasings instead.
	queries := []string{normalized}
	if len(strings.Fields(normalized)) < 2 {
		queries = []string{
			normalized + " Capital",
			normalized + " Ventures",
			normalized + " Partners",
		}
	}

	endDate := time.Now().UTC().Format("2006-01-02")
	selfKey := firstTwoWords(normalized)
	seenCompanies := make(map[string]bool)
	var hits []Hit

	for _, query := range queries {
		resp, err := m.client.FullTextSearch(ctx, query, "S-1", searchStartDate, endDate)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("s-1 search failed")
			continue
		}

		for _, hit := range resp.Hits.Hits {
			source := hit.Source

			// Only primary filing bodies; exhibits mention investors in
			// contexts that say nothing about the cap table.
			if source.FileType != "S-1" && source.FileType != "S-1/A" {
				continue
			}
			if len(source.DisplayNames) == 0 {
				continue
			}

			companyName := strings.TrimSpace(strings.Split(source.DisplayNames[0], "(CIK")[0])
			if companyName == "" {
				continue
			}

			// Self-match guard: the firm's own registration statements
			// would otherwise dominate the results.
			if firstTwoWords(companyName) == selfKey {
				continue
			}

			companyKey := strings.ToLower(companyName)
			if seenCompanies[companyKey] {
				continue
			}

			if containsAny(companyKey, m.excludedSectors) {
				continue
			}

			cik := ""
			if len(source.CIKs) > 0 {
				cik = strings.TrimLeft(source.CIKs[0], "0")
			}

			seenCompanies[companyKey] = true
			hits = append(hits, Hit{
				CompanyName: companyName,
				CIK:         cik,
				FilingDate:  source.FileDate,
				FormType:    source.FileType,
				Accession:   source.Accession,
				URL:         documentURL(cik, source.Accession, hit.ID),
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].FilingDate > hits[j].FilingDate
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// documentURL reconstructs the archive URL for a search hit. The hit id is
// "<accession>:<filename>".
func documentURL(cik, accession, hitID string) string {
	accessionClean := strings.ReplaceAll(accession, "-", "")
	fileID := hitID
	if idx := strings.LastIndex(hitID, ":"); idx >= 0 {
		fileID = hitID[idx+1:]
	}
	return fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%s/%s/%s", cik, accessionClean, fileID)
}

// ExtractOwnershipMentions fetches an S-1 document and pulls out snippets
// asserting share counts or percentage ownership near the firm's name.
// Never errors; any failure yields an empty list.
func (m *Miner) ExtractOwnershipMentions(ctx context.Context, docURL, firmName string) []string {
	body, err := m.client.FetchDocument(ctx, docURL)
	if err != nil {
		log.Warn().Err(err).Str("url", docURL).Msg("s-1 fetch failed")
		return nil
	}
	return ExtractMentions(string(body), firmName)
}

// ExtractMentions runs the proximity patterns over raw document text:
// up to 5 "N shares ... <name>" matches and up to 3 "<name> ... N%"
// matches, case-insensitively.
func ExtractMentions(html, firmName string) []string {
	name := regexp.QuoteMeta(normalizeFirmName(firmName))
	if name == "" {
		return nil
	}

	var mentions []string

	sharePattern, err := regexp.Compile(`(?i)([\d,]+)\s*shares[^<]*` + name)
	if err != nil {
		return nil
	}
	for _, match := range sharePattern.FindAllStringSubmatch(html, 5) {
		mentions = append(mentions, match[1]+" shares")
	}

	pctPattern, err := regexp.Compile(`(?i)` + name + `[^<]*?([\d.]+)%`)
	if err != nil {
		return mentions
	}
	for _, match := range pctPattern.FindAllStringSubmatch(html, 3) {
		mentions = append(mentions, match[1]+"% ownership")
	}

	return mentions
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
