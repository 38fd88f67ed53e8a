package models

import "time"

// Event types
const (
	EventTypeJobCreated            = "JOB_CREATED"
	EventTypeJobStatusChanged      = "JOB_STATUS_CHANGED"
	EventTypePartsConsumed         = "PARTS_CONSUMED"
	EventTypeWarrantyClaimed       = "WARRANTY_CLAIMED"
	EventTypeInvoiceIssued         = "INVOICE_ISSUED"
	EventTypeNotificationRequested = "NOTIFICATION_REQUESTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// JobCreatedEvent published when a repair job is registered
type JobCreatedEvent struct {
	BaseEvent
	JobID      int64  `json:"job_id"`
	CustomerID int64  `json:"customer_id"`
	ProductID  int64  `json:"product_id"`
	Status     string `json:"status"`
}

// JobStatusChangedEvent published on every job status transition
type JobStatusChangedEvent struct {
	BaseEvent
	JobID      int64  `json:"job_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// PartsConsumedEvent published when a job draws parts from inventory
type PartsConsumedEvent struct {
	BaseEvent
	JobID  int64             `json:"job_id"`
	ItemID int64             `json:"item_id"`
	Lines  []ConsumptionLine `json:"lines"`
}

// WarrantyClaimedEvent published when a warranty claim job is registered
type WarrantyClaimedEvent struct {
	BaseEvent
	OriginalJobID int64 `json:"original_job_id"`
	ClaimJobID    int64 `json:"claim_job_id"`
	CustomerID    int64 `json:"customer_id"`
}

// InvoiceIssuedEvent published when an invoice is created for a job
type InvoiceIssuedEvent struct {
	BaseEvent
	InvoiceID   int64 `json:"invoice_id"`
	JobID       int64 `json:"job_id"`
	TotalAmount int64 `json:"total_amount"`
}

// NotificationRequestedEvent carries an outbound email/SMS message
type NotificationRequestedEvent struct {
	BaseEvent
	Contact string `json:"contact"`
	Message string `json:"message"`
}
