package keywords

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rankpilot/rankpilot/internal/models"
)

// Catalog supplies target keywords per page type. Implementations may be
// file-backed, API-backed, or static.
type Catalog interface {
	// ForPageType returns the target keywords for the given page type.
	// An unknown page type returns the default set.
	ForPageType(pageType string) []models.Keyword

	// Tracked returns the fixed keyword set used for ranking estimation.
	Tracked() []models.Keyword
}

// FileCatalog is a Catalog loaded from a JSON file mapping page types to
// keyword lists. The special key "default" supplies the fallback set.
type FileCatalog struct {
	sets    map[string][]models.Keyword
	tracked []models.Keyword
}

type catalogFile struct {
	Sets    map[string][]models.Keyword `json:"sets"`
	Tracked []models.Keyword            `json:"tracked"`
}

// LoadFile reads a keyword catalog from a JSON file.
func LoadFile(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword file: %w", err)
	}

	var cf catalogFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse keyword file: %w", err)
	}

	sets := make(map[string][]models.Keyword, len(cf.Sets))
	for pageType, kws := range cf.Sets {
		sets[strings.ToLower(pageType)] = kws
	}

	return &FileCatalog{sets: sets, tracked: cf.Tracked}, nil
}

// ForPageType returns the keywords configured for pageType, or the
// "default" set when the page type is unknown.
func (c *FileCatalog) ForPageType(pageType string) []models.Keyword {
	if kws, ok := c.sets[strings.ToLower(pageType)]; ok {
		return kws
	}
	return c.sets["default"]
}

// Tracked returns the keywords tracked for ranking estimation.
func (c *FileCatalog) Tracked() []models.Keyword {
	return c.tracked
}

// Static is a Catalog over an in-memory keyword list, used when no
// keyword file is configured and in tests.
type Static struct {
	Keywords []models.Keyword
}

// ForPageType returns the full static set regardless of page type.
func (s Static) ForPageType(string) []models.Keyword { return s.Keywords }

// Tracked returns the full static set.
func (s Static) Tracked() []models.Keyword { return s.Keywords }
