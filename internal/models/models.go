package models

import "time"

// Customer represents a shop customer
type Customer struct {
	ID        int64     `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Employee represents a shop employee
type Employee struct {
	ID        int64     `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Product represents a customer device brought in for repair
type Product struct {
	ID         int64     `db:"id" json:"id"`
	CustomerID int64     `db:"customer_id" json:"customer_id"`
	Name       string    `db:"name" json:"name"`
	Model      string    `db:"model" json:"model"`
	SerialNo   string    `db:"serial_no" json:"serial_no"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Job represents a repair job for a product
type Job struct {
	ID               int64      `db:"id" json:"id"`
	ProductID        int64      `db:"product_id" json:"product_id"`
	CustomerID       int64      `db:"customer_id" json:"customer_id"`
	EmployeeID       int64      `db:"employee_id" json:"employee_id"`
	Description      string     `db:"description" json:"description"`
	Status           string     `db:"status" json:"status"`
	ReceivedAt       time.Time  `db:"received_at" json:"received_at"`
	HandoverAt       *time.Time `db:"handover_at" json:"handover_at,omitempty"`
	WarrantyEligible bool       `db:"warranty_eligible" json:"warranty_eligible"`
	ClaimedJobID     *int64     `db:"claimed_job_id" json:"claimed_job_id,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Job statuses
const (
	JobStatusPending         = "PENDING"
	JobStatusInProgress      = "IN_PROGRESS"
	JobStatusCompleted       = "COMPLETED"
	JobStatusPaid            = "PAID"
	JobStatusCancelled       = "CANCELLED"
	JobStatusWarrantyClaimed = "WARRANTY_CLAIMED"
)

// Warranty statuses derived from a job's handover date and claim linkage
const (
	WarrantyStatusActive      = "ACTIVE"
	WarrantyStatusExpired     = "EXPIRED"
	WarrantyStatusClaimed     = "WARRANTY_CLAIMED"
	WarrantyStatusNotEligible = "NOT_ELIGIBLE"
)

// WarrantyInfo is the derived warranty view of a job
type WarrantyInfo struct {
	Status        string     `json:"status"`
	DaysRemaining int        `json:"days_remaining"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
}

// InventoryItem represents a stocked part type
type InventoryItem struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	StockLimit int       `db:"stock_limit" json:"stock_limit"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// InventoryBatch is a purchase lot of an inventory item.
// Remaining only decreases after purchase; consumption drains
// batches in (purchased_at, id) ascending order.
type InventoryBatch struct {
	ID          int64     `db:"id" json:"id"`
	ItemID      int64     `db:"item_id" json:"item_id"`
	Remaining   int       `db:"remaining" json:"remaining"`
	CostPerUnit int64     `db:"cost_per_unit" json:"cost_per_unit"`
	PurchasedAt time.Time `db:"purchased_at" json:"purchased_at"`
}

// JobUsedInventory records parts drawn from one batch for one job.
// Keyed by (job_id, item_id, batch_id); re-consumption adds to the
// existing row instead of inserting a duplicate.
type JobUsedInventory struct {
	JobID     int64 `db:"job_id" json:"job_id"`
	ItemID    int64 `db:"item_id" json:"item_id"`
	BatchID   int64 `db:"batch_id" json:"batch_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
	TotalCost int64 `db:"total_cost" json:"total_cost"`
}

// ConsumptionLine is one batch draw produced by a consumption request.
// CostPerUnit is snapshotted from the batch at consumption time.
type ConsumptionLine struct {
	BatchID     int64 `json:"batch_id"`
	Quantity    int   `json:"quantity"`
	CostPerUnit int64 `json:"cost_per_unit"`
	LineTotal   int64 `json:"line_total"`
}

// Invoice represents a bill for a completed job
type Invoice struct {
	ID          int64     `db:"id" json:"id"`
	JobID       int64     `db:"job_id" json:"job_id"`
	PartsCost   int64     `db:"parts_cost" json:"parts_cost"`
	LabourCost  int64     `db:"labour_cost" json:"labour_cost"`
	TotalAmount int64     `db:"total_amount" json:"total_amount"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Invoice statuses
const (
	InvoiceStatusPending = "PENDING"
	InvoiceStatusPartial = "PARTIAL"
	InvoiceStatusPaid    = "PAID"
)

// AdvancePayment is a partial payment recorded against an invoice
type AdvancePayment struct {
	ID        int64     `db:"id" json:"id"`
	InvoiceID int64     `db:"invoice_id" json:"invoice_id"`
	Amount    int64     `db:"amount" json:"amount"`
	PaidAt    time.Time `db:"paid_at" json:"paid_at"`
}

// Booking represents an appointment request
type Booking struct {
	ID          int64     `db:"id" json:"id"`
	CustomerID  int64     `db:"customer_id" json:"customer_id"`
	ProductID   int64     `db:"product_id" json:"product_id"`
	Note        string    `db:"note" json:"note"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Feedback is customer feedback on a finished job
type Feedback struct {
	ID         int64     `db:"id" json:"id"`
	JobID      int64     `db:"job_id" json:"job_id"`
	CustomerID int64     `db:"customer_id" json:"customer_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Salary is a monthly salary registration for an employee
type Salary struct {
	ID         int64     `db:"id" json:"id"`
	EmployeeID int64     `db:"employee_id" json:"employee_id"`
	Month      string    `db:"month" json:"month"` // YYYY-MM
	Amount     int64     `db:"amount" json:"amount"`
	PaidAt     time.Time `db:"paid_at" json:"paid_at"`
}

// VerificationCode is a short-lived single-use code bound to one contact
// (email or phone). At most one active row exists per contact; issuing a
// new code overwrites the active row in place.
type VerificationCode struct {
	ID        int64     `db:"id" json:"-"`
	Contact   string    `db:"contact" json:"contact"`
	Code      string    `db:"code" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	Used      bool      `db:"used" json:"used"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
