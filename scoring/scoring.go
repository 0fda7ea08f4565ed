// Package scoring holds the lead scoring rule table and the qualification
// threshold in one place.
package scoring

import leadqual "github.com/leadqual/leadqual"

const (
	WebsiteBonus             = 10
	MissingEnrichmentPenalty = -5
	ValidEmailBonus          = 15
	BadEmailPenalty          = -10
	TierOneCountryBonus      = 10

	// QualifyThreshold is the minimum score for a QUALIFIED lead.
	QualifyThreshold = 15
)

var tierOneCountries = map[string]bool{
	"US":             true,
	"UK":             true,
	"CA":             true,
	"Canada":         true,
	"United Kingdom": true,
	"Germany":        true,
	"France":         true,
	"Australia":      true,
	"Nigeria":        true,
}

// Score applies the rule table to a submission and its enrichment result.
// Rules are summed, not short-circuited, except that an empty enrichment
// replaces the enrichment-based rules with a flat penalty.
func Score(website string, enrichment leadqual.EnrichmentResult) int {
	score := 0

	if website != "" {
		score += WebsiteBonus
	}

	if enrichment.Empty() {
		return score + MissingEnrichmentPenalty
	}

	if enrichment.EmailStatus != nil {
		switch *enrichment.EmailStatus {
		case "valid":
			score += ValidEmailBonus
		case "invalid", "not_found":
			score += BadEmailPenalty
		}
	}

	if enrichment.Country != nil && tierOneCountries[*enrichment.Country] {
		score += TierOneCountryBonus
	}

	return score
}

// Qualify maps a score to its qualification status.
func Qualify(score int) leadqual.LeadStatus {
	if score >= QualifyThreshold {
		return leadqual.StatusQualified
	}
	return leadqual.StatusUnqualified
}
