package store

import (
	"context"
	"database/sql"

	"mn-electronics/internal/models"
)

// CreateCustomer creates a new customer
func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (first_name, last_name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, customer, query,
		customer.FirstName, customer.LastName, customer.Email, customer.Phone)
}

// GetCustomerByID retrieves a customer by ID
func (s *Store) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "customer", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetCustomers retrieves all customers
func (s *Store) GetCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.SelectContext(ctx, &customers, "SELECT * FROM customers ORDER BY id")
	return customers, err
}

// CreateProduct registers a customer device
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (customer_id, name, model, serial_no)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, product, query,
		product.CustomerID, product.Name, product.Model, product.SerialNo)
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// CreateJob creates a new repair job
func (s *Store) CreateJob(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (product_id, customer_id, employee_id, description, status,
			received_at, warranty_eligible, claimed_job_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, job, query,
		job.ProductID, job.CustomerID, job.EmployeeID, job.Description, job.Status,
		job.ReceivedAt, job.WarrantyEligible, job.ClaimedJobID)
}

// GetJobByID retrieves a job by ID
func (s *Store) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	var job models.Job
	err := s.db.GetContext(ctx, &job, "SELECT * FROM jobs WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "job", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJobsByCustomerID retrieves jobs for a customer, newest first
func (s *Store) GetJobsByCustomerID(ctx context.Context, customerID int64) ([]models.Job, error) {
	var jobs []models.Job
	err := s.db.SelectContext(ctx, &jobs,
		"SELECT * FROM jobs WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
	return jobs, err
}

// UpdateJobStatus updates a job's status
func (s *Store) UpdateJobStatus(ctx context.Context, jobID int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET status = $1, updated_at = NOW() WHERE id = $2",
		status, jobID)
	return err
}

// SetJobHandover records the handover timestamp and warranty eligibility.
// The handover timestamp is written exactly once, and only on a job still
// being repaired; otherwise the call reports false without touching the
// row.
func (s *Store) SetJobHandover(ctx context.Context, jobID int64, eligible bool) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET handover_at = NOW(), warranty_eligible = $1,
			status = $2, updated_at = NOW()
		WHERE id = $3 AND handover_at IS NULL AND status = $4`,
		eligible, models.JobStatusCompleted, jobID, models.JobStatusInProgress)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetActiveClaimForJob returns the non-cancelled claim job linked to the
// given job, or nil if none exists
func (s *Store) GetActiveClaimForJob(ctx context.Context, jobID int64) (*models.Job, error) {
	var claim models.Job
	err := s.db.GetContext(ctx, &claim, `
		SELECT * FROM jobs
		WHERE claimed_job_id = $1 AND status != $2
		ORDER BY created_at DESC LIMIT 1`,
		jobID, models.JobStatusCancelled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// GetWarrantyEligibleJobs retrieves handed-over warranty-eligible jobs
func (s *Store) GetWarrantyEligibleJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	err := s.db.SelectContext(ctx, &jobs, `
		SELECT * FROM jobs
		WHERE warranty_eligible = true AND handover_at IS NOT NULL
		ORDER BY handover_at DESC`)
	return jobs, err
}
