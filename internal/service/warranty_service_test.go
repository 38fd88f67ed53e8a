package service

import (
	"testing"
	"time"

	"mn-electronics/internal/models"

	"github.com/stretchr/testify/assert"
)

func eligibleJob(handover time.Time) *models.Job {
	return &models.Job{
		ID:               1,
		Status:           models.JobStatusPaid,
		HandoverAt:       &handover,
		WarrantyEligible: true,
	}
}

func TestComputeWarrantyActiveWindow(t *testing.T) {
	handover := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	job := eligibleJob(handover)

	// Day 0: full window remaining.
	info := ComputeWarranty(job, nil, 90, handover)
	assert.Equal(t, models.WarrantyStatusActive, info.Status)
	assert.Equal(t, 90, info.DaysRemaining)
	assert.Equal(t, handover.AddDate(0, 0, 90), *info.ExpiryDate)

	// Day 89: one day left.
	info = ComputeWarranty(job, nil, 90, handover.AddDate(0, 0, 89))
	assert.Equal(t, models.WarrantyStatusActive, info.Status)
	assert.Equal(t, 1, info.DaysRemaining)

	// Day 91: expired.
	info = ComputeWarranty(job, nil, 90, handover.AddDate(0, 0, 91))
	assert.Equal(t, models.WarrantyStatusExpired, info.Status)
	assert.Equal(t, 0, info.DaysRemaining)
}

func TestComputeWarrantyNotEligible(t *testing.T) {
	handover := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// No handover yet.
	job := &models.Job{ID: 1, Status: models.JobStatusInProgress, WarrantyEligible: true}
	info := ComputeWarranty(job, nil, 90, handover)
	assert.Equal(t, models.WarrantyStatusNotEligible, info.Status)

	// Handed over but flagged ineligible.
	job = eligibleJob(handover)
	job.WarrantyEligible = false
	info = ComputeWarranty(job, nil, 90, handover.AddDate(0, 0, 10))
	assert.Equal(t, models.WarrantyStatusNotEligible, info.Status)
}

func TestComputeWarrantyClaimPrecedence(t *testing.T) {
	handover := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	job := eligibleJob(handover)
	claim := &models.Job{ID: 2, Status: models.JobStatusWarrantyClaimed}

	// Even with the window long expired, a linked claim wins.
	info := ComputeWarranty(job, claim, 90, handover.AddDate(0, 0, 400))
	assert.Equal(t, models.WarrantyStatusClaimed, info.Status)
	assert.Equal(t, 0, info.DaysRemaining)
	assert.Nil(t, info.ExpiryDate)
}

func TestComputeWarrantyClaimJobReportsClaimed(t *testing.T) {
	handover := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	job := eligibleJob(handover)
	job.Status = models.JobStatusWarrantyClaimed

	info := ComputeWarranty(job, nil, 90, handover)
	assert.Equal(t, models.WarrantyStatusClaimed, info.Status)
}
