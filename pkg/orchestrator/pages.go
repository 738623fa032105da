package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rankpilot/rankpilot/internal/models"
)

// LoadPages reads the configured page list from a JSON file: an array
// of {url, page_type, target_keywords?, location?} objects.
func LoadPages(path string) ([]models.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page list: %w", err)
	}

	var pages []models.Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("failed to parse page list: %w", err)
	}

	for i, page := range pages {
		if page.URL == "" {
			return nil, fmt.Errorf("page %d has no url", i)
		}
	}
	return pages, nil
}
