// Package metrics derives fund-level estimates from a Form D filing
// history. Everything here is a pure function of its input: no I/O, no
// retained state, safe to memoize or call repeatedly.
package metrics

import (
	"time"

	"fundscout/pkg/core/edgar"
)

// DeploymentStatus describes where a fund sits in its deployment cycle.
type DeploymentStatus string

const (
	StatusActive  DeploymentStatus = "active"  // < 18 months old
	StatusLate    DeploymentStatus = "late"    // < 42 months old
	StatusHarvest DeploymentStatus = "harvest" // older
	StatusUnknown DeploymentStatus = "unknown" // no filings
)

// Confidence bands how much signal backed an estimate.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// FirmMetrics is the derived view of a firm's Form D history.
type FirmMetrics struct {
	// Tier 1: direct facts.
	FundSize   int64      `json:"fund_size"` // dollars, max amount sold
	LPCount    int64      `json:"lp_count"`
	FirstClose *time.Time `json:"first_close"`

	// Tier 2: derived estimates.
	FundAgeMonths    int              `json:"fund_age_months"`
	DeploymentStatus DeploymentStatus `json:"deployment_status"`
	CheckLow         int64            `json:"check_low"`
	CheckMid         int64            `json:"check_mid"`
	CheckHigh        int64            `json:"check_high"`
	Confidence       Confidence       `json:"confidence"`

	// Activity.
	FilingCount   int `json:"filing_count"`
	DaysSinceLast int `json:"days_since_last"`
}

// Derive computes metrics from a filing history. An empty history is a
// valid, common outcome and yields a zeroed result with status unknown.
func Derive(filings []*edgar.FilingRecord) FirmMetrics {
	return deriveAt(filings, time.Now().UTC())
}

func deriveAt(filings []*edgar.FilingRecord, now time.Time) FirmMetrics {
	if len(filings) == 0 {
		return FirmMetrics{
			DeploymentStatus: StatusUnknown,
			Confidence:       ConfidenceLow,
		}
	}

	// --- Tier 1: direct extraction ---

	// Fund size: max of (amount sold, else offering amount) across filings.
	var fundSize int64
	for _, f := range filings {
		amount := int64Value(f.TotalAmountSold)
		if amount == 0 {
			amount = int64Value(f.TotalOfferingAmount)
		}
		if amount > fundSize {
			fundSize = amount
		}
	}

	var lpCount int64
	for _, f := range filings {
		if n := int64Value(f.InvestorCount); n > lpCount {
			lpCount = n
		}
	}

	var firstClose *time.Time
	for _, f := range filings {
		if f.DateOfFirstSale == nil {
			continue
		}
		if firstClose == nil || f.DateOfFirstSale.Before(*firstClose) {
			d := *f.DateOfFirstSale
			firstClose = &d
		}
	}

	// --- Tier 2: derived with assumptions ---

	fundAgeMonths := 0
	ageAnchor := firstClose
	if ageAnchor == nil {
		// Fall back to the earliest filing date.
		for _, f := range filings {
			if f.FilingDate.IsZero() {
				continue
			}
			if ageAnchor == nil || f.FilingDate.Before(*ageAnchor) {
				d := f.FilingDate
				ageAnchor = &d
			}
		}
	}
	if ageAnchor != nil {
		fundAgeMonths = int(now.Sub(*ageAnchor).Hours()/24) / 30
	}

	var status DeploymentStatus
	switch {
	case fundAgeMonths < 18:
		status = StatusActive
	case fundAgeMonths < 42:
		status = StatusLate
	default:
		status = StatusHarvest
	}

	var minInvestment int64
	for _, f := range filings {
		if v := int64Value(f.MinimumInvestment); v > minInvestment {
			minInvestment = v
		}
	}

	// Deployment percentage: amount sold relative to the stated target.
	var targetSize int64
	for _, f := range filings {
		if v := int64Value(f.TotalOfferingAmount); v > targetSize {
			targetSize = v
		}
	}
	if targetSize == 0 {
		targetSize = fundSize
	}
	pctDeployed := 0.0
	if targetSize > 0 {
		pctDeployed = float64(fundSize) / float64(targetSize)
	}

	estimate := EstimateCheckSize(fundSize, minInvestment, lpCount, fundAgeMonths, pctDeployed)

	daysSinceLast := 0
	var lastFiling time.Time
	for _, f := range filings {
		if f.FilingDate.After(lastFiling) {
			lastFiling = f.FilingDate
		}
	}
	if !lastFiling.IsZero() {
		daysSinceLast = int(now.Sub(lastFiling).Hours() / 24)
	}

	return FirmMetrics{
		FundSize:         fundSize,
		LPCount:          lpCount,
		FirstClose:       firstClose,
		FundAgeMonths:    fundAgeMonths,
		DeploymentStatus: status,
		CheckLow:         estimate.Low,
		CheckMid:         estimate.Mid,
		CheckHigh:        estimate.High,
		Confidence:       estimate.Confidence,
		FilingCount:      len(filings),
		DaysSinceLast:    daysSinceLast,
	}
}

func int64Value(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
