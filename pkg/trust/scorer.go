package trust

import (
	"math"

	"github.com/rankpilot/rankpilot/internal/models"
)

// Signals is the raw E-A-T signal bundle for a site or page. Each group's
// per-signal point values sum to 100.
type Signals struct {
	// Expertise signals
	AuthorBylines     bool // 25 pts
	AuthorCredentials bool // 25 pts
	ExpertReview      bool // 20 pts
	OriginalResearch  bool // 15 pts
	YearsInBusiness   int  // 3 pts per year, capped at 15

	// Authority signals
	ReferringDomains int  // 1 pt per 10 domains, capped at 30
	BrandMentions    bool // 20 pts
	IndustryAwards   bool // 20 pts
	MediaCitations   bool // 15 pts
	SocialFollowing  bool // 15 pts

	// Trust signals
	HTTPS              bool    // 25 pts
	ReviewRating       float64 // 5 pts per star (0-5 scale), 25 pts max
	PrivacyPolicy      bool    // 15 pts
	ContactInfo        bool    // 15 pts
	SecurePayment      bool    // 10 pts
	TransparentPricing bool    // 10 pts
}

// Scorer combines E-A-T signals into a composite trust score.
type Scorer struct{}

// NewScorer creates a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes the per-group scores and the weighted overall:
// round(0.35*expertise + 0.35*authority + 0.30*trust).
func (s *Scorer) Score(sig Signals) models.TrustScore {
	expertise := expertiseScore(sig)
	authority := authorityScore(sig)
	trust := trustScore(sig)

	overall := int(math.Round(0.35*float64(expertise) + 0.35*float64(authority) + 0.30*float64(trust)))

	return models.TrustScore{
		Expertise: expertise,
		Authority: authority,
		Trust:     trust,
		Overall:   overall,
	}
}

func expertiseScore(sig Signals) int {
	score := 0
	if sig.AuthorBylines {
		score += 25
	}
	if sig.AuthorCredentials {
		score += 25
	}
	if sig.ExpertReview {
		score += 20
	}
	if sig.OriginalResearch {
		score += 15
	}
	years := sig.YearsInBusiness * 3
	if years > 15 {
		years = 15
	}
	if years > 0 {
		score += years
	}
	return clampGroup(score)
}

func authorityScore(sig Signals) int {
	score := 0
	domains := sig.ReferringDomains / 10
	if domains > 30 {
		domains = 30
	}
	if domains > 0 {
		score += domains
	}
	if sig.BrandMentions {
		score += 20
	}
	if sig.IndustryAwards {
		score += 20
	}
	if sig.MediaCitations {
		score += 15
	}
	if sig.SocialFollowing {
		score += 15
	}
	return clampGroup(score)
}

func trustScore(sig Signals) int {
	score := 0.0
	if sig.HTTPS {
		score += 25
	}
	rating := sig.ReviewRating
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	score += rating * 5
	if sig.PrivacyPolicy {
		score += 15
	}
	if sig.ContactInfo {
		score += 15
	}
	if sig.SecurePayment {
		score += 10
	}
	if sig.TransparentPricing {
		score += 10
	}
	return clampGroup(int(math.Round(score)))
}

func clampGroup(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
