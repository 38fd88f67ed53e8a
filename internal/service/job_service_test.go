package service

import (
	"testing"

	"mn-electronics/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTransitionAllowed(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.JobStatusPending, models.JobStatusInProgress, true},
		{models.JobStatusPending, models.JobStatusCancelled, true},
		{models.JobStatusPending, models.JobStatusPaid, false},
		{models.JobStatusInProgress, models.JobStatusCompleted, true},
		{models.JobStatusInProgress, models.JobStatusPending, false},
		{models.JobStatusCompleted, models.JobStatusPaid, true},
		{models.JobStatusCompleted, models.JobStatusInProgress, false},
		{models.JobStatusPaid, models.JobStatusCompleted, false},
		{models.JobStatusCancelled, models.JobStatusInProgress, false},
		{models.JobStatusCancelled, models.JobStatusCompleted, false},
		{models.JobStatusWarrantyClaimed, models.JobStatusInProgress, true},
		{models.JobStatusWarrantyClaimed, models.JobStatusCancelled, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, transitionAllowed(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

// Handover moves a job to Completed, so it must be refused from every
// state that has no edge to Completed. A cancelled or already-paid job
// that was never handed over must stay where it is.
func TestHandoverRefusedOutsideRepair(t *testing.T) {
	for _, status := range []string{
		models.JobStatusPending,
		models.JobStatusCompleted,
		models.JobStatusPaid,
		models.JobStatusCancelled,
		models.JobStatusWarrantyClaimed,
	} {
		assert.False(t, transitionAllowed(status, models.JobStatusCompleted),
			"handover from %s", status)
	}

	assert.True(t, transitionAllowed(models.JobStatusInProgress, models.JobStatusCompleted))
}
