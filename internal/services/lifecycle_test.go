package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
)

func testRecord() *models.Feedback {
	return &models.Feedback{
		ID:          primitive.NewObjectID(),
		Title:       "Broken login",
		Status:      "Submitted",
		SubmittedBy: "user-1",
	}
}

func strPtr(s string) *string { return &s }

func TestParseUpdateFields_PartialSemantics(t *testing.T) {
	upd, err := ParseUpdateFields([]byte(`{"status":"Resolved"}`))
	require.NoError(t, err)

	require.NotNil(t, upd.Status)
	assert.Equal(t, "Resolved", *upd.Status)
	assert.Nil(t, upd.Title)
	assert.False(t, upd.AssignedToSet, "absent assignedTo must not count as set")
	assert.False(t, upd.EstimatedResolutionDateSet)
}

func TestParseUpdateFields_NullClearsAssignee(t *testing.T) {
	upd, err := ParseUpdateFields([]byte(`{"assignedTo":null}`))
	require.NoError(t, err)

	assert.True(t, upd.AssignedToSet)
	assert.Nil(t, upd.AssignedTo)
}

func TestParseUpdateFields_EstimatedResolutionDate(t *testing.T) {
	upd, err := ParseUpdateFields([]byte(`{"estimatedResolutionDate":"2026-09-15T00:00:00Z"}`))
	require.NoError(t, err)

	require.True(t, upd.EstimatedResolutionDateSet)
	require.NotNil(t, upd.EstimatedResolutionDate)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), upd.EstimatedResolutionDate.UTC())
}

func TestParseUpdateFields_SubmitterCannotBeChanged(t *testing.T) {
	upd, err := ParseUpdateFields([]byte(`{"submittedBy":"attacker","submitted_by":"attacker","status":"Open"}`))
	require.NoError(t, err)

	// Unknown keys are dropped wholesale; the parsed update carries nothing
	// beyond the recognized fields, so the submitter cannot be rewritten.
	assert.Equal(t, UpdateFields{Status: strPtr("Open")}, upd)
}

func TestParseUpdateFields_BadBody(t *testing.T) {
	_, err := ParseUpdateFields([]byte(`{"status":42}`))
	assert.True(t, IsValidation(err))

	_, err = ParseUpdateFields([]byte(`not json`))
	assert.True(t, IsValidation(err))
}

func TestPlanTransitions_StatusChangeNotifiesSubmitter(t *testing.T) {
	record := testRecord()
	drafts := PlanTransitions(record, UpdateFields{Status: strPtr("In Progress")})

	require.Len(t, drafts, 1)
	assert.Equal(t, "user-1", drafts[0].Recipient)
	assert.Equal(t, models.NotificationInfo, drafts[0].Type)
	assert.Equal(t, "Your feedback 'Broken login' status updated to In Progress", drafts[0].Message)
	assert.Equal(t, "/feedbacks/"+record.ID.Hex(), drafts[0].RelatedLink)
}

func TestPlanTransitions_SameStatusIsSilent(t *testing.T) {
	drafts := PlanTransitions(testRecord(), UpdateFields{Status: strPtr("Submitted")})
	assert.Empty(t, drafts)
}

func TestPlanTransitions_AssignmentNotifiesAssignee(t *testing.T) {
	record := testRecord()
	drafts := PlanTransitions(record, UpdateFields{AssignedTo: strPtr("dev-7"), AssignedToSet: true})

	require.Len(t, drafts, 1)
	assert.Equal(t, "dev-7", drafts[0].Recipient)
	assert.Equal(t, models.NotificationAlert, drafts[0].Type)
	assert.Equal(t, "You have been assigned to feedback 'Broken login'", drafts[0].Message)
}

func TestPlanTransitions_ReassignmentToSameAssigneeIsSilent(t *testing.T) {
	record := testRecord()
	record.AssignedTo = "dev-7"
	drafts := PlanTransitions(record, UpdateFields{AssignedTo: strPtr("dev-7"), AssignedToSet: true})
	assert.Empty(t, drafts)
}

func TestPlanTransitions_UnassignmentIsSilent(t *testing.T) {
	record := testRecord()
	record.AssignedTo = "dev-7"
	drafts := PlanTransitions(record, UpdateFields{AssignedToSet: true})
	assert.Empty(t, drafts)
}

func TestPlanTransitions_StatusAndAssignmentBothFire(t *testing.T) {
	record := testRecord()
	drafts := PlanTransitions(record, UpdateFields{
		Status:        strPtr("In Progress"),
		AssignedTo:    strPtr("dev-7"),
		AssignedToSet: true,
	})

	require.Len(t, drafts, 2)
	assert.Equal(t, "user-1", drafts[0].Recipient)
	assert.Equal(t, "dev-7", drafts[1].Recipient)
}

func TestPlanTransitions_PermissiveStatusTransitions(t *testing.T) {
	// No transition table: Closed -> Submitted is allowed and still notifies.
	record := testRecord()
	record.Status = "Closed"
	drafts := PlanTransitions(record, UpdateFields{Status: strPtr("Submitted")})
	require.Len(t, drafts, 1)
}
