package store

import (
	"context"
	"database/sql"
	"time"

	"mn-electronics/internal/models"
)

// GetActiveCodeByContact returns the unused, unexpired code row for a
// contact, or nil if none exists
func (s *Store) GetActiveCodeByContact(ctx context.Context, contact string, now time.Time) (*models.VerificationCode, error) {
	var code models.VerificationCode
	err := s.db.GetContext(ctx, &code, `
		SELECT * FROM verification_codes
		WHERE contact = $1 AND used = false AND expires_at > $2
		ORDER BY created_at DESC LIMIT 1`,
		contact, now)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// UpsertVerificationCode stores a fresh code for a contact. If an active
// row already exists its code and expiry are overwritten in place, so at
// most one active code exists per contact. Relies on the partial unique
// index on (contact) WHERE used = false.
func (s *Store) UpsertVerificationCode(ctx context.Context, contact, code string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verification_codes (contact, code, expires_at, used)
		VALUES ($1, $2, $3, false)
		ON CONFLICT (contact) WHERE used = false DO UPDATE SET
			code = EXCLUDED.code,
			expires_at = EXCLUDED.expires_at,
			created_at = NOW()`,
		contact, code, expiresAt)
	return err
}

// ConsumeVerificationCode marks the matching active code as used and
// reports whether a match was found. The conditional UPDATE is the
// single-use guard: a row flips used exactly once even under concurrent
// verify attempts.
func (s *Store) ConsumeVerificationCode(ctx context.Context, contact, code string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE verification_codes SET used = true
		WHERE id = (
			SELECT id FROM verification_codes
			WHERE contact = $1 AND code = $2 AND used = false AND expires_at > $3
			ORDER BY created_at DESC LIMIT 1
		) AND used = false`,
		contact, code, now)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
