package orchestrator

import "github.com/rankpilot/rankpilot/internal/models"

// RankEstimator guesses a keyword's search position from the site's
// average optimization score. It is a coarse heuristic, not a model of
// any real engine's ranking behavior, and is replaceable.
type RankEstimator interface {
	Estimate(averageScore int, kw models.Keyword) models.RankEstimate
}

// TableEstimator maps (score tier, keyword difficulty) onto a position
// through a fixed lookup table.
type TableEstimator struct{}

// positionTable rows are score tiers (>=90, >=75, >=50, below), columns
// are easy/medium/hard.
var positionTable = [4][3]int{
	{1, 3, 5},
	{3, 8, 15},
	{8, 20, 30},
	{20, 50, 100},
}

// Estimate looks up the estimated position for kw at the given average
// score.
func (TableEstimator) Estimate(averageScore int, kw models.Keyword) models.RankEstimate {
	tier := 3
	switch {
	case averageScore >= 90:
		tier = 0
	case averageScore >= 75:
		tier = 1
	case averageScore >= 50:
		tier = 2
	}

	col := 1
	strength := "moderate"
	switch kw.Difficulty {
	case models.DifficultyEasy:
		col = 0
		strength = "weak"
	case models.DifficultyHard:
		col = 2
		strength = "strong"
	}

	return models.RankEstimate{
		EstimatedPosition:  positionTable[tier][col],
		CompetitorStrength: strength,
	}
}
