package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankpilot/rankpilot/internal/models"
)

func testPage(pageType, location string, kws ...models.Keyword) models.Page {
	return models.Page{
		URL:            "https://example.com/p",
		PageType:       pageType,
		Location:       location,
		TargetKeywords: kws,
	}
}

func TestBuildServicePage(t *testing.T) {
	b := NewBuilder("Acme", "https://example.com", nil)

	result := b.Build(testPage("service", "Austin",
		models.Keyword{Text: "roof repair", SearchVolume: 900},
		models.Keyword{Text: "gutter cleaning", SearchVolume: 300},
	))

	assert.Equal(t, "Roof repair in Austin | Acme", result.MetaTags.Title)
	assert.Contains(t, result.MetaTags.Description, "roof repair")
	assert.Contains(t, result.MetaTags.Description, "Austin")
	assert.Equal(t, "https://example.com/p", result.MetaTags.Canonical)
}

func TestBuildPicksHighestVolumeKeyword(t *testing.T) {
	b := NewBuilder("Acme", "https://example.com", nil)

	result := b.Build(testPage("article", "",
		models.Keyword{Text: "minor topic", SearchVolume: 10},
		models.Keyword{Text: "major topic", SearchVolume: 5000},
	))

	assert.Contains(t, result.MetaTags.Title, "Major topic")
}

func TestTitleTruncation(t *testing.T) {
	b := NewBuilder("A Company With A Remarkably Long Trading Name", "https://example.com", nil)

	long := strings.Repeat("keyword ", 10)
	result := b.Build(testPage("service", "", models.Keyword{Text: strings.TrimSpace(long), SearchVolume: 1}))

	assert.LessOrEqual(t, len(result.MetaTags.Title), maxTitleLength)
	assert.True(t, strings.HasSuffix(result.MetaTags.Title, "..."))
}

func TestDescriptionBound(t *testing.T) {
	b := NewBuilder("Acme", "https://example.com", nil)

	long := strings.Repeat("extremely long keyword phrase ", 8)
	result := b.Build(testPage("home", "Greater Metropolitan Area", models.Keyword{Text: strings.TrimSpace(long), SearchVolume: 1}))

	assert.LessOrEqual(t, len(result.MetaTags.Description), maxDescriptionLength)
}

func TestSchemas(t *testing.T) {
	b := NewBuilder("Acme", "https://example.com", nil)

	result := b.Build(testPage("service", "Austin",
		models.Keyword{Text: "roof repair", SearchVolume: 900},
		models.Keyword{Text: "gutter cleaning", SearchVolume: 300},
		models.Keyword{Text: "siding", SearchVolume: 100},
	))

	require.Len(t, result.Schemas, 4)

	types := make([]string, 0, len(result.Schemas))
	for _, s := range result.Schemas {
		types = append(types, s["@type"].(string))
	}
	assert.Equal(t, []string{"Organization", "Service", "FAQPage", "BreadcrumbList"}, types)

	service := result.Schemas[1]
	assert.Equal(t, "Austin", service["areaServed"])

	faq := result.Schemas[2]
	questions := faq["mainEntity"].([]models.Schema)
	// one base question plus up to two secondary keywords
	assert.Len(t, questions, 3)
}

func TestNoKeywordsFallback(t *testing.T) {
	b := NewBuilder("Acme", "https://example.com", nil)

	result := b.Build(testPage("home", ""))
	assert.Contains(t, result.MetaTags.Title, "Acme")
	assert.NotEmpty(t, result.MetaTags.Description)
	assert.NotEmpty(t, result.Schemas)
}
