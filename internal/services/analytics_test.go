package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
)

func TestSummarize(t *testing.T) {
	records := []models.Feedback{
		{Status: "Open", Priority: "High", Category: "Bug"},
		{Status: "Open", Priority: "Low", Category: "Bug"},
		{Status: "Resolved", Priority: "High", Category: "Feature Request"},
	}

	a := Summarize(records)

	assert.Equal(t, 3, a.Total)
	assert.Equal(t, map[string]int{"Open": 2, "Resolved": 1}, a.Status)
	assert.Equal(t, map[string]int{"High": 2, "Low": 1}, a.Priority)
	assert.Equal(t, map[string]int{"Bug": 2, "Feature Request": 1}, a.Category)

	// Zero-count labels are omitted entirely.
	assert.NotContains(t, a.Status, "Closed")
}

func TestSummarize_TotalEqualsStatusSum(t *testing.T) {
	records := []models.Feedback{
		{Status: "Submitted"}, {Status: "Pending"}, {Status: "Pending"},
		{Status: "Working"}, {Status: "Closed"},
	}

	a := Summarize(records)

	sum := 0
	for _, n := range a.Status {
		sum += n
	}
	assert.Equal(t, a.Total, sum)
}

func TestSummarize_Empty(t *testing.T) {
	a := Summarize(nil)
	assert.Equal(t, 0, a.Total)
	assert.Empty(t, a.Status)
}
