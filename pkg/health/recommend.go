package health

import (
	"github.com/rankpilot/rankpilot/internal/models"
)

// recommendations is threshold-driven over the metric readings and
// independent of issue detection.
func (m *Monitor) recommendations(metrics models.HealthMetrics) []models.SEORecommendation {
	var recs []models.SEORecommendation

	if metrics.PageSpeed < 90 {
		recs = append(recs, models.SEORecommendation{
			Priority:       models.PriorityHigh,
			Category:       "performance",
			Title:          "Improve page speed",
			Description:    "Page speed is below the fast threshold and directly affects both rankings and conversions.",
			ExpectedImpact: "Faster first paint, improved crawl budget usage and higher rankings",
			Implementation: "Compress images, enable caching headers and defer non-critical scripts",
		})
	}
	if metrics.MobileScore < 90 {
		recs = append(recs, models.SEORecommendation{
			Priority:       models.PriorityHigh,
			Category:       "mobile",
			Title:          "Improve mobile experience",
			Description:    "The mobile score is below target; most search crawling is mobile-first.",
			ExpectedImpact: "Better mobile rankings and lower bounce rate",
			Implementation: "Add a responsive viewport, fix tap-target sizing and test on small screens",
		})
	}
	if metrics.Accessibility < 90 {
		recs = append(recs, models.SEORecommendation{
			Priority:       models.PriorityMedium,
			Category:       "accessibility",
			Title:          "Raise accessibility coverage",
			Description:    "Accessibility gaps limit both assistive-technology users and how engines interpret the page.",
			ExpectedImpact: "Wider audience reach and richer page understanding by crawlers",
			Implementation: "Add alt text, label form controls and verify color contrast",
		})
	}
	if metrics.SEO < 90 {
		recs = append(recs, models.SEORecommendation{
			Priority:       models.PriorityHigh,
			Category:       "seo",
			Title:          "Close on-page SEO gaps",
			Description:    "Core on-page elements are incomplete on at least some pages.",
			ExpectedImpact: "Improved relevance signals for target keywords",
			Implementation: "Fill in titles, meta descriptions, canonical links and heading structure",
		})
	}
	if metrics.BestPractices < 90 {
		recs = append(recs, models.SEORecommendation{
			Priority:       models.PriorityLow,
			Category:       "best-practices",
			Title:          "Adopt remaining web best practices",
			Description:    "Some hygiene items (HTTPS everywhere, modern image formats, no console errors) are outstanding.",
			ExpectedImpact: "Fewer crawl anomalies and better user trust",
			Implementation: "Work through the best-practices audit items one by one",
		})
	}

	return recs
}
