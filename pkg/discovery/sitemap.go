package discovery

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxNestedSitemaps bounds how many child sitemaps of an index are
// followed in one discovery pass.
const maxNestedSitemaps = 50

// SitemapDiscoverer collects a site's URLs from its sitemap.xml,
// following one level of sitemap-index nesting.
type SitemapDiscoverer struct {
	client *http.Client
	logger *zap.Logger
}

// NewSitemapDiscoverer creates a SitemapDiscoverer. A nil logger
// disables logging.
func NewSitemapDiscoverer(timeout time.Duration, logger *zap.Logger) *SitemapDiscoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SitemapDiscoverer{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type urlset struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

type sitemapIndex struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// Discover fetches baseURL's sitemap.xml and returns every listed URL
// in document order.
func (d *SitemapDiscoverer) Discover(ctx context.Context, baseURL string) ([]string, error) {
	sitemapURL := strings.TrimRight(baseURL, "/") + "/sitemap.xml"

	urls, children, err := d.fetchSitemap(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	if len(children) > maxNestedSitemaps {
		d.logger.Warn("sitemap index truncated",
			zap.Int("sitemaps", len(children)),
			zap.Int("limit", maxNestedSitemaps),
		)
		children = children[:maxNestedSitemaps]
	}
	for _, child := range children {
		childURLs, _, err := d.fetchSitemap(ctx, child)
		if err != nil {
			d.logger.Warn("child sitemap skipped",
				zap.String("sitemap", child),
				zap.Error(err),
			)
			continue
		}
		urls = append(urls, childURLs...)
	}

	d.logger.Info("sitemap discovery complete",
		zap.String("sitemap", sitemapURL),
		zap.Int("urls", len(urls)),
	)
	return urls, nil
}

// fetchSitemap retrieves one sitemap document and returns its page URLs
// and any nested sitemap locations.
func (d *SitemapDiscoverer) fetchSitemap(ctx context.Context, sitemapURL string) ([]string, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid sitemap URL: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("sitemap returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sitemap: %w", err)
	}

	var set urlset
	if err := xml.Unmarshal(body, &set); err == nil && len(set.URLs) > 0 {
		urls := make([]string, 0, len(set.URLs))
		for _, u := range set.URLs {
			if loc := strings.TrimSpace(u.Loc); loc != "" {
				urls = append(urls, loc)
			}
		}
		return urls, nil, nil
	}

	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err != nil {
		return nil, nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}
	children := make([]string, 0, len(index.Sitemaps))
	for _, sm := range index.Sitemaps {
		if loc := strings.TrimSpace(sm.Loc); loc != "" {
			children = append(children, loc)
		}
	}
	return nil, children, nil
}
