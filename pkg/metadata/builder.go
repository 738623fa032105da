package metadata

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rankpilot/rankpilot/internal/models"
)

const (
	maxTitleLength       = 60
	maxDescriptionLength = 160
)

// Builder generates meta tags and structured-data objects for a page.
// It is a pure transformation with logging side effects only: overlong
// values are truncated with a warning, never rejected.
type Builder struct {
	siteName string
	siteURL  string
	logger   *zap.Logger
}

// NewBuilder creates a Builder for the given site. A nil logger disables
// logging.
func NewBuilder(siteName, siteURL string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{siteName: siteName, siteURL: siteURL, logger: logger}
}

// Result bundles the generated metadata for one page.
type Result struct {
	MetaTags models.MetaTags
	Schemas  []models.Schema
}

// Build generates the title/description pair and structured-data objects
// for a page of the given type, targeting the supplied keywords.
func (b *Builder) Build(page models.Page) Result {
	primary := primaryKeyword(page.TargetKeywords)

	title := b.title(page.PageType, primary, page.Location)
	description := b.description(page.PageType, primary, page.Location)

	if len(title) > maxTitleLength {
		b.logger.Warn("title exceeds recommended length, truncating",
			zap.String("url", page.URL),
			zap.Int("length", len(title)),
		)
		title = truncate(title, maxTitleLength)
	}
	if len(description) > maxDescriptionLength {
		b.logger.Warn("description exceeds recommended length, truncating",
			zap.String("url", page.URL),
			zap.Int("length", len(description)),
		)
		description = truncate(description, maxDescriptionLength)
	}

	return Result{
		MetaTags: models.MetaTags{
			Title:       title,
			Description: description,
			Canonical:   page.URL,
			Robots:      "index, follow",
		},
		Schemas: b.schemas(page, primary),
	}
}

// title renders the per-page-type title template.
func (b *Builder) title(pageType, primary, location string) string {
	where := ""
	if location != "" {
		where = " in " + location
	}

	switch strings.ToLower(pageType) {
	case "home":
		return fmt.Sprintf("%s | %s%s", b.siteName, capitalize(primary), where)
	case "service":
		return fmt.Sprintf("%s%s | %s", capitalize(primary), where, b.siteName)
	case "article", "blog":
		return fmt.Sprintf("%s: Complete Guide | %s", capitalize(primary), b.siteName)
	case "contact":
		return fmt.Sprintf("Contact %s%s", b.siteName, where)
	default:
		return fmt.Sprintf("%s | %s", capitalize(primary), b.siteName)
	}
}

// description renders the per-page-type description template.
func (b *Builder) description(pageType, primary, location string) string {
	where := ""
	if location != "" {
		where = " in " + location
	}

	switch strings.ToLower(pageType) {
	case "home":
		return fmt.Sprintf("%s offers trusted %s%s. Explore our services, read client reviews and get in touch today.", b.siteName, primary, where)
	case "service":
		return fmt.Sprintf("Professional %s%s from %s. Transparent pricing, proven results and a dedicated team.", primary, where, b.siteName)
	case "article", "blog":
		return fmt.Sprintf("Everything you need to know about %s. Practical advice and expert insight from the %s team.", primary, b.siteName)
	case "contact":
		return fmt.Sprintf("Get in touch with %s%s. Questions about %s? We respond within one business day.", b.siteName, where, primary)
	default:
		return fmt.Sprintf("Learn more about %s at %s.", primary, b.siteName)
	}
}

// schemas builds the structured-data objects: organization, a page-type
// specific entity, an FAQ block and a breadcrumb trail.
func (b *Builder) schemas(page models.Page, primary string) []models.Schema {
	schemas := []models.Schema{
		{
			"@context": "https://schema.org",
			"@type":    "Organization",
			"name":     b.siteName,
			"url":      b.siteURL,
		},
	}

	switch strings.ToLower(page.PageType) {
	case "service":
		entity := models.Schema{
			"@context": "https://schema.org",
			"@type":    "Service",
			"name":     capitalize(primary),
			"provider": models.Schema{"@type": "Organization", "name": b.siteName},
		}
		if page.Location != "" {
			entity["areaServed"] = page.Location
		}
		schemas = append(schemas, entity)
	case "article", "blog":
		schemas = append(schemas, models.Schema{
			"@context": "https://schema.org",
			"@type":    "Article",
			"headline": capitalize(primary),
			"author":   models.Schema{"@type": "Organization", "name": b.siteName},
		})
	case "contact":
		schemas = append(schemas, models.Schema{
			"@context": "https://schema.org",
			"@type":    "ContactPage",
			"url":      page.URL,
		})
	default:
		schemas = append(schemas, models.Schema{
			"@context": "https://schema.org",
			"@type":    "WebPage",
			"name":     capitalize(primary),
			"url":      page.URL,
		})
	}

	schemas = append(schemas, b.faqSchema(page, primary), b.breadcrumbSchema(page))
	return schemas
}

func (b *Builder) faqSchema(page models.Page, primary string) models.Schema {
	questions := []models.Schema{
		{
			"@type": "Question",
			"name":  fmt.Sprintf("What does %s offer for %s?", b.siteName, primary),
			"acceptedAnswer": models.Schema{
				"@type": "Answer",
				"text":  fmt.Sprintf("%s provides %s backed by an experienced team.", b.siteName, primary),
			},
		},
	}
	for _, kw := range secondaryKeywords(page.TargetKeywords, 2) {
		questions = append(questions, models.Schema{
			"@type": "Question",
			"name":  fmt.Sprintf("How does %s relate to %s?", kw, primary),
			"acceptedAnswer": models.Schema{
				"@type": "Answer",
				"text":  fmt.Sprintf("Learn how %s fits into %s on this page.", kw, primary),
			},
		})
	}

	return models.Schema{
		"@context":   "https://schema.org",
		"@type":      "FAQPage",
		"mainEntity": questions,
	}
}

func (b *Builder) breadcrumbSchema(page models.Page) models.Schema {
	items := []models.Schema{
		{"@type": "ListItem", "position": 1, "name": "Home", "item": b.siteURL},
	}
	if !strings.EqualFold(page.PageType, "home") {
		items = append(items, models.Schema{
			"@type":    "ListItem",
			"position": 2,
			"name":     capitalize(page.PageType),
			"item":     page.URL,
		})
	}
	return models.Schema{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	}
}

// primaryKeyword picks the highest-volume keyword as the template subject.
func primaryKeyword(keywords []models.Keyword) string {
	if len(keywords) == 0 {
		return "our services"
	}
	best := keywords[0]
	for _, kw := range keywords[1:] {
		if kw.SearchVolume > best.SearchVolume {
			best = kw
		}
	}
	return best.Text
}

func secondaryKeywords(keywords []models.Keyword, limit int) []string {
	var out []string
	for i, kw := range keywords {
		if i == 0 {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, kw.Text)
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max-3]) + "..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
