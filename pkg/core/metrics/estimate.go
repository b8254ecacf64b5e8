package metrics

// =============================================================================
// CHECK SIZE ESTIMATION
// =============================================================================
//
// Formula: Check = (Fund Size x (1 - Reserve%)) / Portfolio Count
//
// Fund size picks the tier; Form D signals adjust within the tier to
// differentiate similar-sized funds:
//   - minimum investment: institutional vs HNW LP base
//   - LP count: spray vs concentrated
//   - fund age + deployment pace: early vs late, aggressive vs slow

// minViableFundSize is the floor below which Form D amounts are treated as
// noise (an SPV or a partial first close), not a fund.
const minViableFundSize = 1_000_000

// sizeTier holds the base portfolio-count range and capital reserve
// fraction for one fund-size bucket.
type sizeTier struct {
	maxSize       int64 // exclusive upper bound, 0 = open-ended
	portfolioLow  float64
	portfolioHigh float64
	reserve       float64
}

var sizeTiers = []sizeTier{
	{25_000_000, 30, 50, 0.25},  // pre-seed
	{75_000_000, 25, 40, 0.40},  // seed
	{150_000_000, 20, 30, 0.45}, // large seed / small A
	{300_000_000, 15, 25, 0.50}, // series A
	{0, 10, 20, 0.55},           // growth
}

func tierFor(fundSize int64) sizeTier {
	for _, t := range sizeTiers {
		if t.maxSize == 0 || fundSize < t.maxSize {
			return t
		}
	}
	return sizeTiers[len(sizeTiers)-1]
}

// CheckEstimate is a confidence-banded check size range.
type CheckEstimate struct {
	Low        int64
	Mid        int64
	High       int64
	Confidence Confidence
}

// EstimateCheckSize estimates a firm's typical check from its fund size
// and available Form D signals. Funds below the viability floor yield an
// all-zero estimate at low confidence.
func EstimateCheckSize(fundSize, minInvestment, lpCount int64, fundAgeMonths int, pctDeployed float64) CheckEstimate {
	if fundSize < minViableFundSize {
		return CheckEstimate{Confidence: ConfidenceLow}
	}

	tier := tierFor(fundSize)
	portfolio := (tier.portfolioLow + tier.portfolioHigh) / 2
	reserve := tier.reserve
	signals := 0

	// Signal 1: minimum investment (LP base structure).
	if minInvestment >= 1_000_000 {
		signals++
		// Institutional base: disciplined, stays near the midpoint.
	} else if minInvestment > 0 && minInvestment < 100_000 {
		signals++
		portfolio -= 3 // HNW base tends to run more concentrated
	}

	// Signal 2: LP count relative to fund size.
	if lpCount > 0 {
		signals++
		avgLPCheck := float64(fundSize) / float64(lpCount)
		if avgLPCheck < 500_000 {
			portfolio += 4 // many small LPs, spray strategy
		} else if avgLPCheck > 5_000_000 {
			portfolio -= 3 // few big anchors, concentrated
		}
	}

	// Signal 3: fund age + deployment pace.
	if fundAgeMonths > 0 && pctDeployed > 0 {
		signals++
		monthlyRate := pctDeployed / float64(fundAgeMonths)

		if fundAgeMonths < 24 {
			if monthlyRate > 0.03 {
				portfolio += 4 // aggressive deployer: more deals, smaller checks
			} else if monthlyRate < 0.015 {
				portfolio -= 3
			}
		} else {
			if pctDeployed > 0.7 {
				reserve -= 0.05 // late stage, less reserve left
			} else if pctDeployed < 0.4 {
				portfolio -= 4 // very slow after 2 years: concentrated bets
			}
		}
	}

	// Clamp adjustments back inside the tier's bounds.
	if portfolio < tier.portfolioLow {
		portfolio = tier.portfolioLow
	}
	if portfolio > tier.portfolioHigh {
		portfolio = tier.portfolioHigh
	}

	deployable := float64(fundSize) * (1 - reserve)

	mid := int64(deployable / portfolio)
	confidence := ConfidenceLow
	if signals >= 1 {
		confidence = ConfidenceMedium
	}

	return CheckEstimate{
		Low:        int64(float64(mid) * 0.75),
		Mid:        mid,
		High:       int64(float64(mid) * 1.35),
		Confidence: confidence,
	}
}
