package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"mn-electronics/internal/models"
	"mn-electronics/internal/service"
	"mn-electronics/internal/store"
	"mn-electronics/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	store               *store.Store
	jobService          *service.JobService
	inventoryService    *service.InventoryService
	warrantyService     *service.WarrantyService
	verificationService *service.VerificationService
	invoiceService      *service.InvoiceService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	store *store.Store,
	jobService *service.JobService,
	inventoryService *service.InventoryService,
	warrantyService *service.WarrantyService,
	verificationService *service.VerificationService,
	invoiceService *service.InvoiceService,
) *Handler {
	return &Handler{
		store:               store,
		jobService:          jobService,
		inventoryService:    inventoryService,
		warrantyService:     warrantyService,
		verificationService: verificationService,
		invoiceService:      invoiceService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/customers", h.createCustomer)
		v1.GET("/customers", h.listCustomers)
		v1.GET("/customers/:id", h.getCustomer)
		v1.GET("/customers/:id/jobs", h.listCustomerJobs)

		v1.POST("/products", h.createProduct)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		v1.POST("/employees", h.createEmployee)
		v1.GET("/employees", h.listEmployees)
		v1.GET("/employees/:id/salaries", h.listSalaries)
		v1.POST("/salaries", h.createSalary)

		v1.POST("/jobs", h.createJob)
		v1.GET("/jobs/:id", h.getJob)
		v1.PUT("/jobs/:id/status", h.updateJobStatus)
		v1.POST("/jobs/:id/handover", h.handoverJob)
		v1.GET("/jobs/:id/warranty", h.getWarranty)
		v1.GET("/jobs/:id/invoice", h.getJobInvoice)
		v1.GET("/jobs/:id/feedback", h.listJobFeedback)

		v1.GET("/warranty-jobs", h.listWarrantyJobs)
		v1.POST("/warranty-claims", h.registerClaim)

		v1.POST("/inventory", h.createInventoryItem)
		v1.GET("/inventory", h.listInventoryItems)
		v1.GET("/inventory/:id", h.getInventoryItem)
		v1.POST("/inventory/:id/batches", h.registerBatch)
		v1.POST("/inventory/:id/consume", h.consumeParts)

		v1.POST("/invoices", h.createInvoice)
		v1.GET("/invoices/:id", h.getInvoice)
		v1.POST("/invoices/:id/payments", h.recordPayment)

		v1.POST("/bookings", h.createBooking)
		v1.GET("/bookings", h.listBookings)

		v1.POST("/feedback", h.createFeedback)

		v1.POST("/verification/issue", h.issueVerification)
		v1.POST("/verification/verify", h.verifyCode)
	}
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var invalidQty *models.InvalidQuantityError
	var insufficient *models.InsufficientStockError
	var notFound *models.NotFoundError
	var alreadyClaimed *models.AlreadyClaimedError
	var dispatch *models.DispatchError

	switch {
	case errors.As(err, &invalidQty):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":     err.Error(),
			"shortfall": insufficient.Shortfall(),
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &alreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidStatusTransition),
		errors.Is(err, models.ErrAlreadyHandedOver):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrCodeInvalidOrExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &dispatch):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type createCustomerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
}

func (h *Handler) createCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	customer := &models.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if err := h.store.CreateCustomer(c.Request.Context(), customer); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.store.GetCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *Handler) getCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	customer, err := h.store.GetCustomerByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) listCustomerJobs(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	jobs, err := h.jobService.ListJobsByCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

type createProductRequest struct {
	CustomerID int64  `json:"customer_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Model      string `json:"model"`
	SerialNo   string `json:"serial_no"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if _, err := h.store.GetCustomerByID(c.Request.Context(), req.CustomerID); err != nil {
		respondError(c, err)
		return
	}

	product := &models.Product{
		CustomerID: req.CustomerID,
		Name:       req.Name,
		Model:      req.Model,
		SerialNo:   req.SerialNo,
	}
	if err := h.store.CreateProduct(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.store.GetProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.store.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

type createEmployeeRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Role      string `json:"role" binding:"required"`
}

func (h *Handler) createEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	employee := &models.Employee{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      req.Role,
	}
	if err := h.store.CreateEmployee(c.Request.Context(), employee); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func (h *Handler) listEmployees(c *gin.Context) {
	employees, err := h.store.GetEmployees(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

type createSalaryRequest struct {
	EmployeeID int64  `json:"employee_id" binding:"required"`
	Month      string `json:"month" binding:"required"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
}

func (h *Handler) createSalary(c *gin.Context) {
	var req createSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if _, err := h.store.GetEmployeeByID(c.Request.Context(), req.EmployeeID); err != nil {
		respondError(c, err)
		return
	}

	salary := &models.Salary{
		EmployeeID: req.EmployeeID,
		Month:      req.Month,
		Amount:     req.Amount,
	}
	if err := h.store.CreateSalary(c.Request.Context(), salary); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, salary)
}

func (h *Handler) listSalaries(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	salaries, err := h.store.GetSalariesByEmployeeID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"salaries": salaries})
}

func (h *Handler) createJob(c *gin.Context) {
	var req service.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	job, err := h.jobService.CreateJob(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) getJob(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	job, used, err := h.jobService.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job, "used_inventory": used})
}

type updateJobStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) updateJobStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	job, err := h.jobService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type handoverRequest struct {
	WarrantyEligible bool `json:"warranty_eligible"`
}

func (h *Handler) handoverJob(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req handoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	job, err := h.jobService.Handover(c.Request.Context(), id, req.WarrantyEligible)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) getWarranty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	info, err := h.warrantyService.Status(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) listWarrantyJobs(c *gin.Context) {
	jobs, err := h.warrantyService.ListEligibleJobs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *Handler) registerClaim(c *gin.Context) {
	var req service.RegisterClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	claim, err := h.warrantyService.RegisterClaim(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

func (h *Handler) createInventoryItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) listInventoryItems(c *gin.Context) {
	items, err := h.inventoryService.ListItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) getInventoryItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.inventoryService.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) registerBatch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.RegisterBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	batch, err := h.inventoryService.RegisterBatch(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

func (h *Handler) consumeParts(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	lines, err := h.inventoryService.ConsumeParts(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func (h *Handler) createInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *Handler) getInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *Handler) getJobInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetInvoiceForJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *Handler) recordPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

type createBookingRequest struct {
	CustomerID  int64  `json:"customer_id" binding:"required"`
	ProductID   int64  `json:"product_id" binding:"required"`
	Note        string `json:"note"`
	ScheduledAt string `json:"scheduled_at" binding:"required"`
}

func (h *Handler) createBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scheduled_at", "details": err.Error()})
		return
	}

	if _, err := h.store.GetCustomerByID(c.Request.Context(), req.CustomerID); err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.store.GetProductByID(c.Request.Context(), req.ProductID); err != nil {
		respondError(c, err)
		return
	}

	booking := &models.Booking{
		CustomerID:  req.CustomerID,
		ProductID:   req.ProductID,
		Note:        req.Note,
		ScheduledAt: scheduledAt,
	}
	if err := h.store.CreateBooking(c.Request.Context(), booking); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) listBookings(c *gin.Context) {
	bookings, err := h.store.GetBookings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

type createFeedbackRequest struct {
	JobID      int64  `json:"job_id" binding:"required"`
	CustomerID int64  `json:"customer_id" binding:"required"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment"`
}

func (h *Handler) createFeedback(c *gin.Context) {
	var req createFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if _, err := h.store.GetJobByID(c.Request.Context(), req.JobID); err != nil {
		respondError(c, err)
		return
	}

	feedback := &models.Feedback{
		JobID:      req.JobID,
		CustomerID: req.CustomerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := h.store.CreateFeedback(c.Request.Context(), feedback); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

func (h *Handler) listJobFeedback(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	entries, err := h.store.GetFeedbackByJobID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": entries})
}

type issueVerificationRequest struct {
	Contact string `json:"contact" binding:"required"`
}

func (h *Handler) issueVerification(c *gin.Context) {
	var req issueVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if _, err := h.verificationService.Issue(c.Request.Context(), req.Contact); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "sent"})
}

type verifyCodeRequest struct {
	Contact string `json:"contact" binding:"required"`
	Code    string `json:"code" binding:"required,len=6"`
}

func (h *Handler) verifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.verificationService.Verify(c.Request.Context(), req.Contact, req.Code); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
