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

// InvoiceService handles invoicing and advance/full payments for jobs
type InvoiceService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(store *store.Store, eventPublisher *broker.EventPublisher) *InvoiceService {
	return &InvoiceService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateInvoiceRequest represents a request to bill a job
type CreateInvoiceRequest struct {
	JobID      int64 `json:"job_id" binding:"required"`
	LabourCost int64 `json:"labour_cost" binding:"min=0"`
}

// RecordPaymentRequest represents a payment against an invoice
type RecordPaymentRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// InvoiceWithBalance is an invoice with its payments and open balance
type InvoiceWithBalance struct {
	models.Invoice
	Payments []models.AdvancePayment `json:"payments"`
	Paid     int64                   `json:"paid"`
	Balance  int64                   `json:"balance"`
}

// CreateInvoice bills a job: parts cost comes from the recorded
// consumption lines (snapshotted batch costs), labour is supplied.
func (ivs *InvoiceService) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*models.Invoice, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.CreateInvoice")
	defer span.End()

	if _, err := ivs.store.GetJobByID(ctx, req.JobID); err != nil {
		return nil, err
	}

	partsCost, err := ivs.store.SumUsedInventoryCost(ctx, req.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum parts cost: %w", err)
	}

	invoice := &models.Invoice{
		JobID:       req.JobID,
		PartsCost:   partsCost,
		LabourCost:  req.LabourCost,
		TotalAmount: partsCost + req.LabourCost,
		Status:      models.InvoiceStatusPending,
	}

	if err := ivs.store.CreateInvoice(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	util.InvoicesIssuedTotal.Inc()
	ivs.logger.Info("Invoice issued",
		zap.Int64("invoice_id", invoice.ID),
		zap.Int64("job_id", invoice.JobID),
		zap.Int64("total", invoice.TotalAmount))

	event := &models.InvoiceIssuedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeInvoiceIssued,
			Timestamp: time.Now(),
		},
		InvoiceID:   invoice.ID,
		JobID:       invoice.JobID,
		TotalAmount: invoice.TotalAmount,
	}

	if err := ivs.eventPublisher.PublishInvoiceIssued(ctx, event); err != nil {
		ivs.logger.Error("Failed to publish InvoiceIssued event", zap.Error(err))
	}

	return invoice, nil
}

// RecordPayment registers an advance or full payment against an invoice.
// When the paid total covers the invoice, the invoice and its job move
// to Paid; otherwise the invoice becomes Partial.
func (ivs *InvoiceService) RecordPayment(ctx context.Context, invoiceID int64, req *RecordPaymentRequest) (*InvoiceWithBalance, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.RecordPayment")
	defer span.End()

	invoice, err := ivs.store.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	payment := &models.AdvancePayment{
		InvoiceID: invoiceID,
		Amount:    req.Amount,
	}
	if err := ivs.store.CreateAdvancePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	paid, err := ivs.store.SumAdvancePayments(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	status := models.InvoiceStatusPartial
	kind := "advance"
	if paid >= invoice.TotalAmount {
		status = models.InvoiceStatusPaid
		kind = "full"
	}

	if err := ivs.store.UpdateInvoiceStatus(ctx, invoiceID, status); err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}

	if status == models.InvoiceStatusPaid {
		job, err := ivs.store.GetJobByID(ctx, invoice.JobID)
		if err == nil && job.Status == models.JobStatusCompleted {
			if err := ivs.store.UpdateJobStatus(ctx, invoice.JobID, models.JobStatusPaid); err != nil {
				ivs.logger.Error("Failed to mark job paid",
					zap.Int64("job_id", invoice.JobID),
					zap.Error(err))
			}
		}
	}

	util.PaymentsRecordedTotal.WithLabelValues(kind).Inc()
	ivs.logger.Info("Payment recorded",
		zap.Int64("invoice_id", invoiceID),
		zap.Int64("amount", req.Amount),
		zap.String("status", status))

	invoice.Status = status
	return ivs.buildBalance(ctx, invoice)
}

// GetInvoice retrieves an invoice with its payments and open balance
func (ivs *InvoiceService) GetInvoice(ctx context.Context, invoiceID int64) (*InvoiceWithBalance, error) {
	invoice, err := ivs.store.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return ivs.buildBalance(ctx, invoice)
}

// GetInvoiceForJob retrieves the latest invoice for a job
func (ivs *InvoiceService) GetInvoiceForJob(ctx context.Context, jobID int64) (*InvoiceWithBalance, error) {
	invoice, err := ivs.store.GetInvoiceByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return ivs.buildBalance(ctx, invoice)
}

func (ivs *InvoiceService) buildBalance(ctx context.Context, invoice *models.Invoice) (*InvoiceWithBalance, error) {
	payments, err := ivs.store.GetAdvancePaymentsByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}

	var paid int64
	for _, p := range payments {
		paid += p.Amount
	}

	balance := invoice.TotalAmount - paid
	if balance < 0 {
		balance = 0
	}

	return &InvoiceWithBalance{
		Invoice:  *invoice,
		Payments: payments,
		Paid:     paid,
		Balance:  balance,
	}, nil
}
