package submitter

import "github.com/rankpilot/rankpilot/internal/models"

// GenerateReport aggregates per-batch results into run totals, a
// per-engine breakdown and the average response time.
func GenerateReport(results []models.SubmissionResult) models.SubmissionReport {
	report := models.SubmissionReport{
		TotalBatches: len(results),
		ByEngine:     make(map[string]models.EngineBreakdown),
	}

	var totalTime int64
	for _, r := range results {
		breakdown := report.ByEngine[r.Engine]
		breakdown.Batches++
		if r.Success {
			report.Successful++
			report.URLsSubmitted += r.URLsSubmitted
			breakdown.Successful++
			breakdown.URLsSubmitted += r.URLsSubmitted
		} else {
			report.Failed++
		}
		report.ByEngine[r.Engine] = breakdown
		totalTime += r.ResponseTimeMs
	}

	if len(results) > 0 {
		report.AvgResponseTimeMs = totalTime / int64(len(results))
	}
	return report
}
