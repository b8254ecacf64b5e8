package edgar

import "time"

// =============================================================================
// SEC EDGAR WIRE TYPES
// =============================================================================

// SubmissionsResponse is the top-level company submissions document.
type SubmissionsResponse struct {
	CIK     string     `json:"cik"`
	Name    string     `json:"name"`
	Filings SubFilings `json:"filings"`
}

// SubFilings contains the recent filing index.
type SubFilings struct {
	Recent RecentFilings `json:"recent"`
}

// RecentFilings holds filing attributes as parallel arrays, exactly as the
// submissions API returns them.
type RecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"` // e.g. "0001234567-24-000012"
	FilingDate      []string `json:"filingDate"`      // e.g. "2024-02-06"
	Form            []string `json:"form"`            // "D", "D/A", "10-K", ...
	PrimaryDocument []string `json:"primaryDocument"`
}

// SearchResponse is the full-text search envelope.
type SearchResponse struct {
	Hits SearchHits `json:"hits"`
}

// SearchHits wraps the ranked hit list.
type SearchHits struct {
	Hits []SearchHit `json:"hits"`
}

// SearchHit is one full-text search result.
type SearchHit struct {
	ID     string       `json:"_id"` // "<accession>:<filename>"
	Source SearchSource `json:"_source"`
}

// SearchSource carries the filing attributes of a search hit.
type SearchSource struct {
	CIKs         []string `json:"ciks"`
	DisplayNames []string `json:"display_names"` // "Company Name (CIK 0001234567)"
	FileType     string   `json:"file_type"`
	FileDate     string   `json:"file_date"`
	Accession    string   `json:"adsh"`
}

// =============================================================================
// DOMAIN TYPES
// =============================================================================

// FirmResult is one resolved firm candidate from a search.
type FirmResult struct {
	CIK          string `json:"cik"`
	Name         string `json:"name"`
	RecentFiling string `json:"recent_filing"` // ISO date of newest Form D, "" if none
	FilingCount  int    `json:"filing_count"`  // Form D + D/A count
}

// RelatedPerson is a natural person named on a Form D.
type RelatedPerson struct {
	Name          string   `json:"name"`
	Relationships []string `json:"relationships"` // "Executive Officer", "Director", ...
}

// FilingRecord is one parsed Form D filing. Immutable once constructed;
// nil pointers mean the field was absent or unparseable in the source XML.
type FilingRecord struct {
	AccessionNumber     string          `json:"accession_number"`
	CIK                 string          `json:"cik"`
	IssuerName          string          `json:"issuer_name"`
	FilingDate          time.Time       `json:"filing_date"`
	IsAmendment         bool            `json:"is_amendment"`
	TotalOfferingAmount *int64          `json:"total_offering_amount"`
	TotalAmountSold     *int64          `json:"total_amount_sold"`
	TotalRemaining      *int64          `json:"total_remaining"`
	InvestorCount       *int64          `json:"investor_count"`
	MinimumInvestment   *int64          `json:"minimum_investment"`
	IndustryGroup       string          `json:"industry_group"`
	IssuerState         string          `json:"issuer_state"`
	IssuerCity          string          `json:"issuer_city"`
	DateOfFirstSale     *time.Time      `json:"date_of_first_sale"`
	RelatedPersons      []RelatedPerson `json:"related_persons"`
}
