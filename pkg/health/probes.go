package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/rankpilot/rankpilot/internal/models"
)

// prober issues best-effort HTTP GETs against the site. Every method
// treats fetch failure as "inconclusive" rather than an error path.
type prober struct {
	client *http.Client
	logger *zap.Logger
}

func newProber(timeout time.Duration, logger *zap.Logger) *prober {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &prober{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// fetch retrieves a URL, returning the body, status code and elapsed
// time. A non-nil error means the request produced no response at all.
func (p *prober) fetch(ctx context.Context, target string) (string, int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid probe URL: %w", err)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return "", 0, elapsed, fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, elapsed, fmt.Errorf("failed to read probe body: %w", err)
	}
	return string(body), resp.StatusCode, elapsed, nil
}

// detectIssues fetches the base page, robots.txt and sitemap.xml and
// flags missing metadata, heading problems, alt-less images, a
// non-HTTPS base URL and robots misconfiguration.
func (m *Monitor) detectIssues(ctx context.Context, baseURL string) []models.SEOIssue {
	var issues []models.SEOIssue

	if !strings.HasPrefix(strings.ToLower(baseURL), "https://") {
		issues = append(issues, models.SEOIssue{
			Severity:      models.SeverityCritical,
			Category:      "security",
			Description:   "Site is not served over HTTPS",
			AffectedPages: []string{baseURL},
			AutoFixable:   false,
			Solution:      "Install a TLS certificate and redirect all HTTP traffic to HTTPS",
		})
	}

	issues = append(issues, m.pageIssues(ctx, baseURL)...)
	issues = append(issues, m.robotsIssues(ctx, baseURL)...)
	issues = append(issues, m.sitemapIssues(ctx, baseURL)...)

	return issues
}

// pageIssues audits the base page markup. A failed fetch leaves the
// page checks inconclusive.
func (m *Monitor) pageIssues(ctx context.Context, baseURL string) []models.SEOIssue {
	body, status, _, err := m.probes.fetch(ctx, baseURL)
	if err != nil || status < 200 || status >= 300 {
		m.logger.Warn("base page probe inconclusive",
			zap.String("url", baseURL),
			zap.Int("status_code", status),
			zap.Error(err),
		)
		return nil
	}

	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		m.logger.Warn("base page markup unparseable, checks inconclusive",
			zap.String("url", baseURL),
			zap.Error(err),
		)
		return nil
	}

	audit := auditPage(root)
	var issues []models.SEOIssue

	if !audit.hasTitle {
		issues = append(issues, models.SEOIssue{
			Severity:      models.SeverityCritical,
			Category:      "metadata",
			Description:   "Page is missing a <title> tag",
			AffectedPages: []string{baseURL},
			AutoFixable:   true,
			Solution:      "Generate a title from the page's primary keyword",
		})
	}
	if !audit.hasDescription {
		issues = append(issues, models.SEOIssue{
			Severity:      models.SeverityHigh,
			Category:      "metadata",
			Description:   "Page is missing a meta description",
			AffectedPages: []string{baseURL},
			AutoFixable:   true,
			Solution:      "Generate a meta description from the page's primary keyword",
		})
	}
	if !audit.hasCanonical {
		issues = append(issues, models.SEOIssue{
			Severity:      models.SeverityHigh,
			Category:      "metadata",
			Description:   "Page is missing a canonical link",
			AffectedPages: []string{baseURL},
			AutoFixable:   true,
			Solution:      "Add a rel=canonical link pointing at the preferred URL",
		})
	}
	if audit.h1Count == 0 {
		issues = append(issues, models.SEOIssue{
			Severity:      models.SeverityHigh,
			Category:      "structure",
			Description:   "Page has no H1 heading",
			AffectedPages: []string{baseURL},
			AutoFixable:   false,
			Solution:      "Add exactly one H1 containing the primary keyword",
		})
	} else if audit.h1Count > 1 {
		issues = append(issues, models.SEOIssue{
			Severity:      models.SeverityMedium,
			Category:      "structure",
			Description:   fmt.Sprintf("Page has %d H1 headings", audit.h1Count),
			AffectedPages: []string{baseURL},
			AutoFixable:   false,
			Solution:      "Demote extra H1 headings to H2",
		})
	}
	if audit.imagesWithoutAlt > 0 {
		issues = append(issues, models.SEOIssue{
			Severity:      models.SeverityMedium,
			Category:      "accessibility",
			Description:   fmt.Sprintf("%d images are missing alt attributes", audit.imagesWithoutAlt),
			AffectedPages: []string{baseURL},
			AutoFixable:   true,
			Solution:      "Add descriptive alt text to every content image",
		})
	}

	return issues
}

// robotsIssues checks robots.txt presence and parses it for a rule set
// that blocks all crawling.
func (m *Monitor) robotsIssues(ctx context.Context, baseURL string) []models.SEOIssue {
	robotsURL := strings.TrimRight(baseURL, "/") + "/robots.txt"
	body, status, _, err := m.probes.fetch(ctx, robotsURL)
	if err != nil {
		m.logger.Warn("robots.txt probe inconclusive", zap.Error(err))
		return nil
	}
	if status < 200 || status >= 300 {
		return []models.SEOIssue{{
			Severity:      models.SeverityHigh,
			Category:      "crawling",
			Description:   "robots.txt is missing",
			AffectedPages: []string{robotsURL},
			AutoFixable:   true,
			Solution:      "Publish a robots.txt that allows crawling and references the sitemap",
		}}
	}

	robots, err := robotstxt.FromString(body)
	if err != nil {
		m.logger.Warn("robots.txt unparseable, check inconclusive", zap.Error(err))
		return nil
	}
	if !robots.TestAgent("/", "*") {
		return []models.SEOIssue{{
			Severity:      models.SeverityCritical,
			Category:      "crawling",
			Description:   "robots.txt blocks all crawlers from the site root",
			AffectedPages: []string{robotsURL},
			AutoFixable:   false,
			Solution:      "Remove the blanket Disallow rule so search engines can crawl the site",
		}}
	}
	return nil
}

// sitemapIssues checks sitemap.xml presence.
func (m *Monitor) sitemapIssues(ctx context.Context, baseURL string) []models.SEOIssue {
	sitemapURL := strings.TrimRight(baseURL, "/") + "/sitemap.xml"
	_, status, _, err := m.probes.fetch(ctx, sitemapURL)
	if err != nil {
		m.logger.Warn("sitemap probe inconclusive", zap.Error(err))
		return nil
	}
	if status < 200 || status >= 300 {
		return []models.SEOIssue{{
			Severity:      models.SeverityHigh,
			Category:      "indexing",
			Description:   "sitemap.xml is missing",
			AffectedPages: []string{sitemapURL},
			AutoFixable:   true,
			Solution:      "Generate and publish a sitemap.xml listing every indexable URL",
		}}
	}
	return nil
}

// checkEngines probes each configured engine endpoint for reachability.
// An endpoint that answers anything below 500 is considered healthy:
// submission endpoints routinely reject bare GETs but a response still
// proves the service is up.
func (m *Monitor) checkEngines(ctx context.Context) []models.EngineStatus {
	statuses := make([]models.EngineStatus, 0, len(m.engines))
	for _, engine := range m.engines {
		status := "unreachable"
		_, code, _, err := m.probes.fetch(ctx, engine.Endpoint)
		if err == nil && code < 500 {
			status = "healthy"
		} else if err != nil {
			m.logger.Warn("engine probe inconclusive",
				zap.String("engine", engine.Name),
				zap.Error(err),
			)
		}
		statuses = append(statuses, models.EngineStatus{
			Engine: engine.Name,
			Status: status,
		})
	}
	return statuses
}

type pageAudit struct {
	hasTitle         bool
	hasDescription   bool
	hasCanonical     bool
	h1Count          int
	hasViewport      bool
	imagesWithoutAlt int
	totalImages      int
}

// auditPage walks the DOM once collecting every signal the issue and
// metric checks need.
func auditPage(root *html.Node) pageAudit {
	var audit pageAudit

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && strings.TrimSpace(n.FirstChild.Data) != "" {
					audit.hasTitle = true
				}
			case "meta":
				name := attr(n, "name")
				if strings.EqualFold(name, "description") && attr(n, "content") != "" {
					audit.hasDescription = true
				}
				if strings.EqualFold(name, "viewport") {
					audit.hasViewport = true
				}
			case "link":
				if strings.EqualFold(attr(n, "rel"), "canonical") && attr(n, "href") != "" {
					audit.hasCanonical = true
				}
			case "h1":
				audit.h1Count++
			case "img":
				audit.totalImages++
				if attr(n, "alt") == "" {
					audit.imagesWithoutAlt++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return audit
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
