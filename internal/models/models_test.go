package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForScoreBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  OptimizationStatus
	}{
		{100, StatusExcellent},
		{90, StatusExcellent},
		{89, StatusGood},
		{75, StatusGood},
		{74, StatusNeedsImprovement},
		{50, StatusNeedsImprovement},
		{49, StatusPoor},
		{0, StatusPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForScore(tt.score), "score %d", tt.score)
	}
}

func TestHealthStatusForScoreBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  HealthStatus
	}{
		{100, HealthExcellent},
		{90, HealthExcellent},
		{89, HealthGood},
		{70, HealthGood},
		{69, HealthFair},
		{50, HealthFair},
		{49, HealthPoor},
		{0, HealthPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HealthStatusForScore(tt.score), "score %d", tt.score)
	}
}
