package service

import (
	"context"
	"fmt"
	"time"

	"mn-electronics/internal/broker"
	"mn-electronics/internal/models"
	"mn-electronics/internal/redisclient"
	"mn-electronics/internal/store"
	"mn-electronics/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WarrantyService derives warranty status for jobs and registers
// warranty-claim jobs linked back to the original repair
type WarrantyService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	durationDays   int
	now            func() time.Time
}

// NewWarrantyService creates a new warranty service
func NewWarrantyService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	durationDays int,
) *WarrantyService {
	return &WarrantyService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		durationDays:   durationDays,
		now:            time.Now,
	}
}

// ComputeWarranty derives the warranty view of a job. Precedence: an
// existing claim wins over everything, then eligibility, then the date
// window. daysRemaining is truncated to whole days, never negative.
func ComputeWarranty(job *models.Job, claim *models.Job, durationDays int, now time.Time) models.WarrantyInfo {
	if job.Status == models.JobStatusWarrantyClaimed || claim != nil {
		return models.WarrantyInfo{Status: models.WarrantyStatusClaimed}
	}

	if job.HandoverAt == nil || !job.WarrantyEligible {
		return models.WarrantyInfo{Status: models.WarrantyStatusNotEligible}
	}

	expiry := job.HandoverAt.AddDate(0, 0, durationDays)
	if now.After(expiry) {
		return models.WarrantyInfo{Status: models.WarrantyStatusExpired, ExpiryDate: &expiry}
	}

	daysRemaining := int(expiry.Sub(now).Hours() / 24)
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	return models.WarrantyInfo{
		Status:        models.WarrantyStatusActive,
		DaysRemaining: daysRemaining,
		ExpiryDate:    &expiry,
	}
}

// Status returns the warranty view of a job
func (ws *WarrantyService) Status(ctx context.Context, jobID int64) (*models.WarrantyInfo, error) {
	ctx, span := util.StartSpan(ctx, "WarrantyService.Status")
	defer span.End()

	job, err := ws.store.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	claim, err := ws.store.GetActiveClaimForJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up claim: %w", err)
	}

	info := ComputeWarranty(job, claim, ws.durationDays, ws.now())
	return &info, nil
}

// JobWithWarranty pairs a job with its derived warranty view
type JobWithWarranty struct {
	models.Job
	Warranty models.WarrantyInfo `json:"warranty"`
}

// ListEligibleJobs returns handed-over warranty-eligible jobs with their
// derived status, newest handover first
func (ws *WarrantyService) ListEligibleJobs(ctx context.Context) ([]JobWithWarranty, error) {
	jobs, err := ws.store.GetWarrantyEligibleJobs(ctx)
	if err != nil {
		return nil, err
	}

	now := ws.now()
	result := make([]JobWithWarranty, 0, len(jobs))
	for i := range jobs {
		claim, err := ws.store.GetActiveClaimForJob(ctx, jobs[i].ID)
		if err != nil {
			return nil, err
		}
		result = append(result, JobWithWarranty{
			Job:      jobs[i],
			Warranty: ComputeWarranty(&jobs[i], claim, ws.durationDays, now),
		})
	}
	return result, nil
}

// RegisterClaimRequest represents a warranty claim registration
type RegisterClaimRequest struct {
	OriginalJobID int64  `json:"original_job_id" binding:"required"`
	EmployeeID    int64  `json:"employee_id" binding:"required"`
	Description   string `json:"description" binding:"required"`
}

// RegisterClaim creates a follow-up job with status Warranty-Claimed,
// linked back to the original job. Customer and product carry over from
// the original unchanged. Fails with AlreadyClaimedError if a
// non-cancelled claim already links to the original.
func (ws *WarrantyService) RegisterClaim(ctx context.Context, req *RegisterClaimRequest) (*models.Job, error) {
	ctx, span := util.StartSpan(ctx, "WarrantyService.RegisterClaim")
	defer span.End()

	// Short redis lock closes the race between the duplicate-claim check
	// and the insert when two claims for the same job arrive together.
	if ws.redis != nil {
		lockKey := fmt.Sprintf("claim-job-%d", req.OriginalJobID)
		acquired, err := ws.redis.AcquireLock(ctx, lockKey, 10*time.Second)
		if err != nil {
			ws.logger.Warn("Claim lock unavailable, proceeding without it", zap.Error(err))
		} else if !acquired {
			util.WarrantyClaimsRejectedTotal.WithLabelValues("concurrent_claim").Inc()
			return nil, &models.AlreadyClaimedError{JobID: req.OriginalJobID}
		} else {
			defer func() {
				if err := ws.redis.ReleaseLock(context.Background(), lockKey); err != nil {
					ws.logger.Warn("Failed to release claim lock", zap.Error(err))
				}
			}()
		}
	}

	original, err := ws.store.GetJobByID(ctx, req.OriginalJobID)
	if err != nil {
		util.WarrantyClaimsRejectedTotal.WithLabelValues("job_not_found").Inc()
		return nil, err
	}

	if _, err := ws.store.GetCustomerByID(ctx, original.CustomerID); err != nil {
		util.WarrantyClaimsRejectedTotal.WithLabelValues("customer_not_found").Inc()
		return nil, err
	}
	if _, err := ws.store.GetProductByID(ctx, original.ProductID); err != nil {
		util.WarrantyClaimsRejectedTotal.WithLabelValues("product_not_found").Inc()
		return nil, err
	}

	existing, err := ws.store.GetActiveClaimForJob(ctx, req.OriginalJobID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing claim: %w", err)
	}
	if existing != nil {
		util.WarrantyClaimsRejectedTotal.WithLabelValues("already_claimed").Inc()
		return nil, &models.AlreadyClaimedError{JobID: req.OriginalJobID, ClaimJobID: existing.ID}
	}

	claim := &models.Job{
		ProductID:        original.ProductID,
		CustomerID:       original.CustomerID,
		EmployeeID:       req.EmployeeID,
		Description:      req.Description,
		Status:           models.JobStatusWarrantyClaimed,
		ReceivedAt:       ws.now(),
		WarrantyEligible: true,
		ClaimedJobID:     &original.ID,
	}

	if err := ws.store.CreateJob(ctx, claim); err != nil {
		return nil, fmt.Errorf("failed to create claim job: %w", err)
	}

	util.WarrantyClaimsTotal.Inc()
	ws.logger.Info("Warranty claim registered",
		zap.Int64("original_job_id", original.ID),
		zap.Int64("claim_job_id", claim.ID))

	event := &models.WarrantyClaimedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeWarrantyClaimed,
			Timestamp: ws.now(),
		},
		OriginalJobID: original.ID,
		ClaimJobID:    claim.ID,
		CustomerID:    original.CustomerID,
	}

	if err := ws.eventPublisher.PublishWarrantyClaimed(ctx, event); err != nil {
		ws.logger.Error("Failed to publish WarrantyClaimed event", zap.Error(err))
	}

	return claim, nil
}
