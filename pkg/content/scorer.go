package content

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/publicsuffix"

	"github.com/rankpilot/rankpilot/internal/models"
)

// Scorer analyzes a page's rendered markup against its target keywords.
// It is a pure transformation: malformed input degrades to zero counts
// rather than returning an error.
type Scorer struct {
	logger *zap.Logger
}

// NewScorer creates a Scorer. A nil logger disables logging.
func NewScorer(logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{logger: logger}
}

// Analyze scores rawHTML against the target keywords. The second return
// value is the list of resolved internal link URLs found on the page.
func (s *Scorer) Analyze(rawHTML, pageURL string, targetKeywords []models.Keyword) (models.ContentAnalysis, []string) {
	analysis := models.ContentAnalysis{}

	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		s.logger.Warn("failed to parse page markup, treating as empty",
			zap.String("url", pageURL),
			zap.Error(err),
		)
		analysis.Recommendations = recommendations(analysis)
		return analysis, nil
	}

	text := extractText(rawHTML, root)
	words := strings.Fields(text)
	analysis.WordCount = len(words)

	hits := keywordHits(text, targetKeywords)
	if analysis.WordCount > 0 {
		analysis.KeywordDensity = 100 * float64(hits) / float64(analysis.WordCount)
	}

	analysis.HeadingCounts = countHeadings(root)

	internal, external := classifyLinks(root, pageURL)
	analysis.InternalLinks = len(internal)
	analysis.ExternalLinks = external

	analysis.ContentScore = clamp(contentScore(analysis))
	analysis.ReadabilityScore = clamp(readabilityScore(analysis))
	analysis.Recommendations = recommendations(analysis)

	return analysis, internal
}

// extractText pulls the main content text via trafilatura, falling back
// to a raw text-node walk when extraction yields nothing.
func extractText(rawHTML string, root *html.Node) string {
	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{})
	if err == nil && result != nil && strings.TrimSpace(result.ContentText) != "" {
		return result.ContentText
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return sb.String()
}

// keywordHits counts total occurrences of all target keywords in text.
func keywordHits(text string, targetKeywords []models.Keyword) int {
	lower := strings.ToLower(text)
	total := 0
	for _, kw := range targetKeywords {
		term := strings.ToLower(strings.TrimSpace(kw.Text))
		if term == "" {
			continue
		}
		total += strings.Count(lower, term)
	}
	return total
}

func countHeadings(root *html.Node) models.HeadingCounts {
	var counts models.HeadingCounts

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1":
				counts.H1++
			case "h2":
				counts.H2++
			case "h3":
				counts.H3++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return counts
}

// classifyLinks splits anchor hrefs into resolved internal URLs and an
// external count. Internal means same eTLD+1 as the page URL.
func classifyLinks(root *html.Node, pageURL string) (internal []string, external int) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, 0
	}

	for _, href := range anchorHrefs(root) {
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		parsed, err := url.Parse(href)
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(parsed)
		scheme := strings.ToLower(resolved.Scheme)
		if scheme != "http" && scheme != "https" {
			continue
		}
		if sameSite(resolved.Hostname(), base.Hostname()) {
			internal = append(internal, resolved.String())
		} else {
			external++
		}
	}
	return internal, external
}

func anchorHrefs(root *html.Node) []string {
	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					hrefs = append(hrefs, attr.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return hrefs
}

// sameSite compares hosts by effective TLD plus one, so blog.example.com
// counts as internal to example.com.
func sameSite(host, baseHost string) bool {
	if strings.EqualFold(host, baseHost) {
		return true
	}
	hostRoot, err1 := publicsuffix.EffectiveTLDPlusOne(host)
	baseRoot, err2 := publicsuffix.EffectiveTLDPlusOne(baseHost)
	if err1 != nil || err2 != nil {
		return false
	}
	return strings.EqualFold(hostRoot, baseRoot)
}

// contentScore applies the content weighting:
// up to 30 pts proportional to word count (capped at 1500 words),
// 30 pts for keyword density within [1%,2%] else 15,
// 20 pts for exactly one H1, 10 pts for >=3 H2 else 5,
// and 2 pts per internal link capped at 10.
func contentScore(a models.ContentAnalysis) int {
	score := 0.0

	wc := a.WordCount
	if wc > 1500 {
		wc = 1500
	}
	score += 30 * float64(wc) / 1500

	if a.KeywordDensity >= 1 && a.KeywordDensity <= 2 {
		score += 30
	} else {
		score += 15
	}

	if a.HeadingCounts.H1 == 1 {
		score += 20
	}

	if a.HeadingCounts.H2 >= 3 {
		score += 10
	} else {
		score += 5
	}

	links := a.InternalLinks
	if links > 5 {
		links = 5
	}
	score += float64(links) * 2

	return int(score + 0.5)
}

// readabilityScore awards 40 pts for >=300 words, 30 pts for >=3 H2 and
// 30 pts for >=5 H3.
func readabilityScore(a models.ContentAnalysis) int {
	score := 0
	if a.WordCount >= 300 {
		score += 40
	}
	if a.HeadingCounts.H2 >= 3 {
		score += 30
	}
	if a.HeadingCounts.H3 >= 5 {
		score += 30
	}
	return score
}

// recommendations emits one human-readable suggestion per unmet threshold.
func recommendations(a models.ContentAnalysis) []string {
	var recs []string

	if a.WordCount < 300 {
		recs = append(recs, fmt.Sprintf("Content too short (%d words): expand to at least 300 words", a.WordCount))
	}
	if a.HeadingCounts.H1 == 0 {
		recs = append(recs, "Missing H1 heading: add exactly one H1 containing the primary keyword")
	} else if a.HeadingCounts.H1 > 1 {
		recs = append(recs, fmt.Sprintf("Multiple H1 headings (%d): keep exactly one", a.HeadingCounts.H1))
	}
	if a.HeadingCounts.H2 < 3 {
		recs = append(recs, "Add more H2 subheadings to structure the content (aim for at least 3)")
	}
	if a.KeywordDensity < 1 {
		recs = append(recs, "Keyword density below 1%: work target keywords into the copy naturally")
	} else if a.KeywordDensity > 2 {
		recs = append(recs, "Keyword density above 2%: reduce keyword repetition to avoid stuffing")
	}
	if a.InternalLinks < 3 {
		recs = append(recs, "Low internal linking: add links to related pages on the site")
	}

	return recs
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
