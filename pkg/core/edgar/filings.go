package edgar

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/phuslu/log"
)

// =============================================================================
// FILING HISTORY AGGREGATION
// =============================================================================

// maxFilingsPerFirm caps how many Form D documents are fetched and parsed
// for a single firm; histories longer than this add little signal.
const maxFilingsPerFirm = 20

// FetchFormD fetches and parses a single Form D filing. The raw XML lives
// at primary_doc.xml under the filing's archive directory (the xslFormDX01
// variant renders HTML and is not parseable).
func (c *Client) FetchFormD(ctx context.Context, cik, accessionNumber string) (*FilingRecord, error) {
	cleanCIK := strings.TrimLeft(cik, "0")
	cleanAccession := strings.ReplaceAll(accessionNumber, "-", "")

	u := fmt.Sprintf("%s/Archives/edgar/data/%s/%s/primary_doc.xml", c.archivesURL, cleanCIK, cleanAccession)
	body, err := c.get(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	return ParseFormD(body, cleanCIK, accessionNumber)
}

// FilingsForCIK returns the firm's parsed Form D history, most recent
// first. Aggregation is best-effort: a filing that fails to fetch or parse
// is skipped, and a failure to retrieve the index at all yields an empty
// list — downstream callers treat "no filings" and "fetch failed" the same.
func (c *Client) FilingsForCIK(ctx context.Context, cik string) []*FilingRecord {
	var resp SubmissionsResponse
	u := fmt.Sprintf("%s/submissions/CIK%s.json", c.dataURL, padCIK(cik))
	if err := c.getJSON(ctx, u, nil, &resp); err != nil {
		log.Warn().Err(err).Str("cik", cik).Msg("submissions fetch failed")
		return nil
	}

	recent := resp.Filings.Recent
	var filings []*FilingRecord
	for i, form := range recent.Form {
		if form != "D" && form != "D/A" {
			continue
		}
		if len(filings) >= maxFilingsPerFirm {
			break
		}
		if i >= len(recent.AccessionNumber) || recent.AccessionNumber[i] == "" {
			continue
		}

		filing, err := c.FetchFormD(ctx, cik, recent.AccessionNumber[i])
		if err != nil {
			log.Warn().Err(err).
				Str("cik", cik).
				Str("accession", recent.AccessionNumber[i]).
				Msg("form d fetch failed")
			continue
		}
		filings = append(filings, filing)
	}

	sort.SliceStable(filings, func(i, j int) bool {
		return filings[i].FilingDate.After(filings[j].FilingDate)
	})
	return filings
}
