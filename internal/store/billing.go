package store

import (
	"context"
	"database/sql"

	"mn-electronics/internal/models"
)

// CreateInvoice creates a new invoice for a job
func (s *Store) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (job_id, parts_cost, labour_cost, total_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, invoice, query,
		invoice.JobID, invoice.PartsCost, invoice.LabourCost, invoice.TotalAmount, invoice.Status)
}

// GetInvoiceByID retrieves an invoice by ID
func (s *Store) GetInvoiceByID(ctx context.Context, id int64) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.GetContext(ctx, &invoice, "SELECT * FROM invoices WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "invoice", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetInvoiceByJobID retrieves the latest invoice for a job
func (s *Store) GetInvoiceByJobID(ctx context.Context, jobID int64) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.GetContext(ctx, &invoice,
		"SELECT * FROM invoices WHERE job_id = $1 ORDER BY created_at DESC LIMIT 1", jobID)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "invoice", ID: jobID}
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateInvoiceStatus updates invoice status
func (s *Store) UpdateInvoiceStatus(ctx context.Context, invoiceID int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2",
		status, invoiceID)
	return err
}

// CreateAdvancePayment records a partial payment against an invoice
func (s *Store) CreateAdvancePayment(ctx context.Context, payment *models.AdvancePayment) error {
	query := `
		INSERT INTO advance_payments (invoice_id, amount)
		VALUES ($1, $2)
		RETURNING id, paid_at`

	return s.db.GetContext(ctx, payment, query, payment.InvoiceID, payment.Amount)
}

// GetAdvancePaymentsByInvoiceID retrieves payments for an invoice
func (s *Store) GetAdvancePaymentsByInvoiceID(ctx context.Context, invoiceID int64) ([]models.AdvancePayment, error) {
	var payments []models.AdvancePayment
	err := s.db.SelectContext(ctx, &payments,
		"SELECT * FROM advance_payments WHERE invoice_id = $1 ORDER BY paid_at", invoiceID)
	return payments, err
}

// SumAdvancePayments returns the total paid against an invoice
func (s *Store) SumAdvancePayments(ctx context.Context, invoiceID int64) (int64, error) {
	var total int64
	err := s.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(amount), 0) FROM advance_payments WHERE invoice_id = $1", invoiceID)
	return total, err
}

// CreateBooking creates an appointment booking
func (s *Store) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (customer_id, product_id, note, scheduled_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, booking, query,
		booking.CustomerID, booking.ProductID, booking.Note, booking.ScheduledAt)
}

// GetBookings retrieves all bookings, soonest first
func (s *Store) GetBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.SelectContext(ctx, &bookings, "SELECT * FROM bookings ORDER BY scheduled_at")
	return bookings, err
}

// CreateFeedback records customer feedback for a job
func (s *Store) CreateFeedback(ctx context.Context, feedback *models.Feedback) error {
	query := `
		INSERT INTO feedback (job_id, customer_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, feedback, query,
		feedback.JobID, feedback.CustomerID, feedback.Rating, feedback.Comment)
}

// GetFeedbackByJobID retrieves feedback entries for a job
func (s *Store) GetFeedbackByJobID(ctx context.Context, jobID int64) ([]models.Feedback, error) {
	var entries []models.Feedback
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM feedback WHERE job_id = $1 ORDER BY created_at DESC", jobID)
	return entries, err
}

// CreateEmployee creates a new employee
func (s *Store) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	query := `
		INSERT INTO employees (first_name, last_name, email, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, employee, query,
		employee.FirstName, employee.LastName, employee.Email, employee.Role)
}

// GetEmployeeByID retrieves an employee by ID
func (s *Store) GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error) {
	var employee models.Employee
	err := s.db.GetContext(ctx, &employee, "SELECT * FROM employees WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "employee", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// GetEmployees retrieves all employees
func (s *Store) GetEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	err := s.db.SelectContext(ctx, &employees, "SELECT * FROM employees ORDER BY id")
	return employees, err
}

// CreateSalary registers a salary payment for an employee
func (s *Store) CreateSalary(ctx context.Context, salary *models.Salary) error {
	query := `
		INSERT INTO salaries (employee_id, month, amount)
		VALUES ($1, $2, $3)
		RETURNING id, paid_at`

	return s.db.GetContext(ctx, salary, query,
		salary.EmployeeID, salary.Month, salary.Amount)
}

// GetSalariesByEmployeeID retrieves salary history for an employee
func (s *Store) GetSalariesByEmployeeID(ctx context.Context, employeeID int64) ([]models.Salary, error) {
	var salaries []models.Salary
	err := s.db.SelectContext(ctx, &salaries,
		"SELECT * FROM salaries WHERE employee_id = $1 ORDER BY month DESC", employeeID)
	return salaries, err
}
