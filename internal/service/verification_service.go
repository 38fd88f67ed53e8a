package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"mn-electronics/internal/models"
	"mn-electronics/internal/util"

	"go.uber.org/zap"
)

// CodeStore is the persistence contract for verification codes
type CodeStore interface {
	GetActiveCodeByContact(ctx context.Context, contact string, now time.Time) (*models.VerificationCode, error)
	UpsertVerificationCode(ctx context.Context, contact, code string, expiresAt time.Time) error
	ConsumeVerificationCode(ctx context.Context, contact, code string, now time.Time) (bool, error)
}

// Dispatcher delivers a verification message to a contact (email or
// phone number)
type Dispatcher interface {
	Dispatch(ctx context.Context, contact, message string) error
}

// NoopDispatcher logs the message instead of sending it, for
// development configurations
type NoopDispatcher struct {
	logger *zap.Logger
}

// NewNoopDispatcher creates a dispatcher that only logs
func NewNoopDispatcher() *NoopDispatcher {
	return &NoopDispatcher{logger: util.GetLogger()}
}

// Dispatch logs the outbound message
func (d *NoopDispatcher) Dispatch(_ context.Context, contact, message string) error {
	d.logger.Info("Notification suppressed (noop dispatch)",
		zap.String("contact", contact),
		zap.String("message", message))
	return nil
}

// VerificationService issues and checks short-lived single-use codes
// proving control of an email address or phone number
type VerificationService struct {
	codes      CodeStore
	dispatcher Dispatcher
	logger     *zap.Logger
	ttl        time.Duration
	now        func() time.Time
}

// NewVerificationService creates a new verification service
func NewVerificationService(codes CodeStore, dispatcher Dispatcher, ttl time.Duration) *VerificationService {
	return &VerificationService{
		codes:      codes,
		dispatcher: dispatcher,
		logger:     util.GetLogger(),
		ttl:        ttl,
		now:        time.Now,
	}
}

// generateCode returns a 6-digit code in 100000-999999
func generateCode() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

// Issue generates a fresh code for the contact, expiring after the
// configured TTL. An existing active code for the contact is overwritten
// in place, so only the newest code verifies. The code is stored before
// dispatch; a dispatch failure returns DispatchError but keeps the
// stored code, so the caller can retry delivery by issuing again.
func (vs *VerificationService) Issue(ctx context.Context, contact string) (string, error) {
	ctx, span := util.StartSpan(ctx, "VerificationService.Issue")
	defer span.End()

	code := generateCode()
	now := vs.now()
	expiresAt := now.Add(vs.ttl)

	existing, err := vs.codes.GetActiveCodeByContact(ctx, contact, now)
	if err != nil {
		return "", fmt.Errorf("failed to look up active code: %w", err)
	}
	if existing != nil {
		vs.logger.Info("Overwriting active verification code",
			zap.String("contact", contact))
	}

	if err := vs.codes.UpsertVerificationCode(ctx, contact, code, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}

	util.VerificationCodesIssuedTotal.Inc()
	vs.logger.Info("Verification code issued",
		zap.String("contact", contact),
		zap.Time("expires_at", expiresAt))

	message := fmt.Sprintf("Your MN Electronics verification code is %s. It expires in %d minutes.",
		code, int(vs.ttl.Minutes()))

	if err := vs.dispatcher.Dispatch(ctx, contact, message); err != nil {
		util.NotificationsDispatchedTotal.WithLabelValues("failure").Inc()
		vs.logger.Error("Failed to dispatch verification code",
			zap.String("contact", contact),
			zap.Error(err))
		return code, &models.DispatchError{Contact: contact, Err: err}
	}

	util.NotificationsDispatchedTotal.WithLabelValues("success").Inc()
	return code, nil
}

// Verify checks the code for the contact and marks it used. Any failure
// (absent, mismatched, already used, expired) reports the same generic
// error without side effects.
func (vs *VerificationService) Verify(ctx context.Context, contact, code string) error {
	ctx, span := util.StartSpan(ctx, "VerificationService.Verify")
	defer span.End()

	ok, err := vs.codes.ConsumeVerificationCode(ctx, contact, code, vs.now())
	if err != nil {
		util.VerificationAttemptsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to verify code: %w", err)
	}

	if !ok {
		util.VerificationAttemptsTotal.WithLabelValues("rejected").Inc()
		return models.ErrCodeInvalidOrExpired
	}

	util.VerificationAttemptsTotal.WithLabelValues("verified").Inc()
	vs.logger.Info("Contact verified", zap.String("contact", contact))
	return nil
}
