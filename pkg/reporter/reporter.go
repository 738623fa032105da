package reporter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rankpilot/rankpilot/internal/models"
)

// Reporter renders run reports for CLI output or file export.
type Reporter struct{}

// New creates a Reporter.
func New() *Reporter {
	return &Reporter{}
}

// RenderOrchestration renders an orchestration report as indented JSON.
func (r *Reporter) RenderOrchestration(report models.OrchestrationReport) (string, error) {
	return r.render(report)
}

// RenderHealth renders a health report as indented JSON.
func (r *Reporter) RenderHealth(report models.SEOHealthReport) (string, error) {
	return r.render(report)
}

// RenderPage renders a single page optimization result as indented
// JSON.
func (r *Reporter) RenderPage(result models.PageOptimizationResult) (string, error) {
	return r.render(result)
}

// RenderSubmission renders a submission report as indented JSON.
func (r *Reporter) RenderSubmission(report models.SubmissionReport) (string, error) {
	return r.render(report)
}

func (r *Reporter) render(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

// Write sends a rendered report to a file, or stdout when path is
// empty.
func (r *Reporter) Write(rendered, path string) error {
	if path == "" {
		fmt.Println(rendered)
		return nil
	}
	if err := os.WriteFile(path, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
