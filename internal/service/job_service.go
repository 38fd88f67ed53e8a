package service

import (
	"context"
	"fmt"
	"time"

	"mn-electronics/internal/broker"
	"mn-electronics/internal/models"
	"mn-electronics/internal/store"
	"mn-electronics/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobService handles repair job lifecycle
type JobService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewJobService creates a new job service
func NewJobService(store *store.Store, eventPublisher *broker.EventPublisher) *JobService {
	return &JobService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// allowedTransitions is the forward-only job lifecycle. Warranty-claim
// jobs start at WARRANTY_CLAIMED and re-enter the repair flow.
var allowedTransitions = map[string][]string{
	models.JobStatusPending:         {models.JobStatusInProgress, models.JobStatusCancelled},
	models.JobStatusInProgress:      {models.JobStatusCompleted, models.JobStatusCancelled},
	models.JobStatusCompleted:       {models.JobStatusPaid},
	models.JobStatusWarrantyClaimed: {models.JobStatusInProgress, models.JobStatusCancelled},
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CreateJobRequest represents a request to register a repair job
type CreateJobRequest struct {
	ProductID   int64  `json:"product_id" binding:"required"`
	CustomerID  int64  `json:"customer_id" binding:"required"`
	EmployeeID  int64  `json:"employee_id" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// CreateJob registers a new repair job in Pending state
func (js *JobService) CreateJob(ctx context.Context, req *CreateJobRequest) (*models.Job, error) {
	ctx, span := util.StartSpan(ctx, "JobService.CreateJob")
	defer span.End()

	if _, err := js.store.GetCustomerByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	if _, err := js.store.GetProductByID(ctx, req.ProductID); err != nil {
		return nil, err
	}
	if _, err := js.store.GetEmployeeByID(ctx, req.EmployeeID); err != nil {
		return nil, err
	}

	job := &models.Job{
		ProductID:   req.ProductID,
		CustomerID:  req.CustomerID,
		EmployeeID:  req.EmployeeID,
		Description: req.Description,
		Status:      models.JobStatusPending,
		ReceivedAt:  time.Now(),
	}

	if err := js.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	util.JobsCreatedTotal.Inc()
	js.logger.Info("Job created", zap.Int64("job_id", job.ID))

	event := &models.JobCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeJobCreated,
			Timestamp: time.Now(),
		},
		JobID:      job.ID,
		CustomerID: job.CustomerID,
		ProductID:  job.ProductID,
		Status:     job.Status,
	}

	if err := js.eventPublisher.PublishJobCreated(ctx, event); err != nil {
		js.logger.Error("Failed to publish JobCreated event", zap.Error(err))
	}

	return job, nil
}

// GetJob retrieves a job with its used-parts lines
func (js *JobService) GetJob(ctx context.Context, jobID int64) (*models.Job, []models.JobUsedInventory, error) {
	job, err := js.store.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	used, err := js.store.GetUsedInventoryByJobID(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	return job, used, nil
}

// ListJobsByCustomer retrieves jobs for a customer
func (js *JobService) ListJobsByCustomer(ctx context.Context, customerID int64) ([]models.Job, error) {
	if _, err := js.store.GetCustomerByID(ctx, customerID); err != nil {
		return nil, err
	}
	return js.store.GetJobsByCustomerID(ctx, customerID)
}

// UpdateStatus moves a job through the forward-only lifecycle
func (js *JobService) UpdateStatus(ctx context.Context, jobID int64, newStatus string) (*models.Job, error) {
	ctx, span := util.StartSpan(ctx, "JobService.UpdateStatus")
	defer span.End()

	job, err := js.store.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(job.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidStatusTransition, job.Status, newStatus)
	}

	if err := js.store.UpdateJobStatus(ctx, jobID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	util.JobStatusTransitionsTotal.WithLabelValues(newStatus).Inc()
	js.publishStatusChanged(ctx, jobID, job.Status, newStatus)

	job.Status = newStatus
	return job, nil
}

// Handover marks the repair finished and handed back to the customer.
// The handover timestamp is set exactly once; this also moves the job to
// Completed and fixes its warranty eligibility. Only a job that may
// transition to Completed can be handed over.
func (js *JobService) Handover(ctx context.Context, jobID int64, warrantyEligible bool) (*models.Job, error) {
	ctx, span := util.StartSpan(ctx, "JobService.Handover")
	defer span.End()

	job, err := js.store.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(job.Status, models.JobStatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidStatusTransition,
			job.Status, models.JobStatusCompleted)
	}

	updated, err := js.store.SetJobHandover(ctx, jobID, warrantyEligible)
	if err != nil {
		return nil, fmt.Errorf("failed to record handover: %w", err)
	}
	if !updated {
		return nil, models.ErrAlreadyHandedOver
	}

	util.JobStatusTransitionsTotal.WithLabelValues(models.JobStatusCompleted).Inc()
	js.logger.Info("Job handed over",
		zap.Int64("job_id", jobID),
		zap.Bool("warranty_eligible", warrantyEligible))
	js.publishStatusChanged(ctx, jobID, job.Status, models.JobStatusCompleted)

	return js.store.GetJobByID(ctx, jobID)
}

func (js *JobService) publishStatusChanged(ctx context.Context, jobID int64, from, to string) {
	event := &models.JobStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeJobStatusChanged,
			Timestamp: time.Now(),
		},
		JobID:      jobID,
		FromStatus: from,
		ToStatus:   to,
	}

	if err := js.eventPublisher.PublishJobStatusChanged(ctx, event); err != nil {
		js.logger.Error("Failed to publish JobStatusChanged event", zap.Error(err))
	}
}
