package optimizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankpilot/rankpilot/internal/models"
	"github.com/rankpilot/rankpilot/pkg/content"
	"github.com/rankpilot/rankpilot/pkg/metadata"
	"github.com/rankpilot/rankpilot/pkg/trust"
)

type stubFetcher struct {
	html string
	err  error
}

func (s stubFetcher) Fetch(context.Context, string) (string, error) {
	return s.html, s.err
}

func strongSignals() trust.Signals {
	return trust.Signals{
		AuthorBylines:      true,
		AuthorCredentials:  true,
		ExpertReview:       true,
		OriginalResearch:   true,
		YearsInBusiness:    10,
		ReferringDomains:   500,
		BrandMentions:      true,
		IndustryAwards:     true,
		MediaCitations:     true,
		SocialFollowing:    true,
		HTTPS:              true,
		ReviewRating:       5,
		PrivacyPolicy:      true,
		ContactInfo:        true,
		SecurePayment:      true,
		TransparentPricing: true,
	}
}

func newTestOptimizer(fetcher Fetcher, signals trust.Signals) *Optimizer {
	return New(
		content.NewScorer(nil),
		trust.NewScorer(),
		metadata.NewBuilder("Acme", "https://example.com", nil),
		fetcher,
		signals,
		nil,
	)
}

func richPage() string {
	var sb strings.Builder
	sb.WriteString(`<html><head><title>t</title></head><body><h1>Widgets</h1>`)
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&sb, "<p>filler text number %d about widgets</p>", i)
	}
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&sb, `<a href="/page%d">p</a>`, i)
	}
	sb.WriteString(`</body></html>`)
	return sb.String()
}

func TestOptimizeFullyEquippedPage(t *testing.T) {
	opt := newTestOptimizer(stubFetcher{html: richPage()}, strongSignals())

	page := models.Page{
		URL:            "https://example.com/widgets",
		PageType:       "service",
		TargetKeywords: []models.Keyword{{Text: "widgets", SearchVolume: 100}},
	}
	result := opt.Optimize(context.Background(), page)

	// 15 keywords + 20 metadata + 15 schemas + 20 trust content
	// + 10 trust signals + 15 full EAT + 5 internal links
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, models.StatusExcellent, result.Status)
	assert.Equal(t, 100, result.EATScore)
	assert.GreaterOrEqual(t, len(result.InternalLinks), 5)
	assert.NotEmpty(t, result.Schemas)
	assert.NotEmpty(t, result.MetaTags.Title)
}

func TestOptimizeDegradesOnFetchFailure(t *testing.T) {
	opt := newTestOptimizer(stubFetcher{err: errors.New("connection refused")}, strongSignals())

	page := models.Page{
		URL:            "https://example.com/broken",
		PageType:       "service",
		TargetKeywords: []models.Keyword{{Text: "widgets", SearchVolume: 100}},
	}
	result := opt.Optimize(context.Background(), page)

	// Fetch failure loses only the internal-link component
	assert.Equal(t, 95, result.Score)
	assert.Equal(t, models.StatusExcellent, result.Status)
	assert.NotEmpty(t, result.Improvements)
}

func TestOptimizeWeakSite(t *testing.T) {
	opt := newTestOptimizer(stubFetcher{html: "<html><body><p>hi</p></body></html>"}, trust.Signals{})

	result := opt.Optimize(context.Background(), models.Page{
		URL:      "https://example.com/",
		PageType: "home",
	})

	// 0 keywords + 20 metadata + 15 schemas + 0 trust + 0 EAT + 0 links
	assert.Equal(t, 35, result.Score)
	assert.Equal(t, models.StatusPoor, result.Status)

	joined := strings.Join(result.Improvements, "\n")
	assert.Contains(t, joined, "No target keywords")
	assert.Contains(t, joined, "E-A-T")
	assert.Contains(t, joined, "internal links")
}

func TestHTTPFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("<html><body>ok</body></html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	f := NewHTTPFetcher(2*time.Second, "RankPilot/test")

	body, err := f.Fetch(context.Background(), server.URL+"/ok")
	require.NoError(t, err)
	assert.Contains(t, body, "ok")

	_, err = f.Fetch(context.Background(), server.URL+"/missing")
	assert.Error(t, err)
}
