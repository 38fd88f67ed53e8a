package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"mn-electronics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCodeStore mirrors the store's verification semantics in memory:
// one active row per contact, overwritten on re-issue, flipped to used
// exactly once on a successful verify.
type fakeCodeStore struct {
	rows   []*models.VerificationCode
	nextID int64
}

func (f *fakeCodeStore) GetActiveCodeByContact(_ context.Context, contact string, now time.Time) (*models.VerificationCode, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		row := f.rows[i]
		if row.Contact == contact && !row.Used && row.ExpiresAt.After(now) {
			return row, nil
		}
	}
	return nil, nil
}

func (f *fakeCodeStore) UpsertVerificationCode(_ context.Context, contact, code string, expiresAt time.Time) error {
	for _, row := range f.rows {
		if row.Contact == contact && !row.Used {
			row.Code = code
			row.ExpiresAt = expiresAt
			return nil
		}
	}
	f.nextID++
	f.rows = append(f.rows, &models.VerificationCode{
		ID:        f.nextID,
		Contact:   contact,
		Code:      code,
		ExpiresAt: expiresAt,
	})
	return nil
}

func (f *fakeCodeStore) ConsumeVerificationCode(_ context.Context, contact, code string, now time.Time) (bool, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		row := f.rows[i]
		if row.Contact == contact && row.Code == code && !row.Used && row.ExpiresAt.After(now) {
			row.Used = true
			return true, nil
		}
	}
	return false, nil
}

type fakeDispatcher struct {
	sent []string
	err  error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, contact, message string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, contact)
	return nil
}

func newTestVerification(t *testing.T) (*VerificationService, *fakeCodeStore, *fakeDispatcher, *time.Time) {
	t.Helper()

	codes := &fakeCodeStore{}
	dispatcher := &fakeDispatcher{}
	vs := NewVerificationService(codes, dispatcher, 15*time.Minute)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	vs.now = func() time.Time { return now }
	return vs, codes, dispatcher, &now
}

func TestIssueGeneratesSixDigitCode(t *testing.T) {
	vs, _, dispatcher, _ := newTestVerification(t)
	ctx := context.Background()

	code, err := vs.Issue(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]{5}$`), code)
	assert.Equal(t, []string{"a@b.com"}, dispatcher.sent)
}

func TestVerifyIsSingleUse(t *testing.T) {
	vs, _, _, _ := newTestVerification(t)
	ctx := context.Background()

	code, err := vs.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	require.NoError(t, vs.Verify(ctx, "a@b.com", code))

	err = vs.Verify(ctx, "a@b.com", code)
	assert.ErrorIs(t, err, models.ErrCodeInvalidOrExpired)
}

func TestVerifyRejectsWrongCode(t *testing.T) {
	vs, _, _, _ := newTestVerification(t)
	ctx := context.Background()

	code, err := vs.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	// Generated codes are always >= 100000, so this never collides.
	assert.ErrorIs(t, vs.Verify(ctx, "a@b.com", "000000"), models.ErrCodeInvalidOrExpired)

	// The stored code is untouched by the failed attempt.
	require.NoError(t, vs.Verify(ctx, "a@b.com", code))
}

func TestVerifyRejectsExpiredCode(t *testing.T) {
	vs, _, _, now := newTestVerification(t)
	ctx := context.Background()

	code, err := vs.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	*now = now.Add(16 * time.Minute)

	err = vs.Verify(ctx, "a@b.com", code)
	assert.ErrorIs(t, err, models.ErrCodeInvalidOrExpired)
}

func TestReissueOverwritesActiveCode(t *testing.T) {
	vs, codes, _, _ := newTestVerification(t)
	ctx := context.Background()

	first, err := vs.Issue(ctx, "a@b.com")
	require.NoError(t, err)
	second, err := vs.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	// One active row per contact, holding only the newest code.
	assert.Len(t, codes.rows, 1)

	if first != second {
		assert.ErrorIs(t, vs.Verify(ctx, "a@b.com", first), models.ErrCodeInvalidOrExpired)
	}
	require.NoError(t, vs.Verify(ctx, "a@b.com", second))
}

func TestIssueKeepsCodeOnDispatchFailure(t *testing.T) {
	vs, _, dispatcher, _ := newTestVerification(t)
	dispatcher.err = errors.New("smtp gateway down")
	ctx := context.Background()

	code, err := vs.Issue(ctx, "a@b.com")

	var dispatchErr *models.DispatchError
	require.True(t, errors.As(err, &dispatchErr))
	assert.Equal(t, "a@b.com", dispatchErr.Contact)

	// The stored code survives the dispatch failure and still verifies.
	require.NoError(t, vs.Verify(ctx, "a@b.com", code))
}

func TestVerifyContactsAreIndependent(t *testing.T) {
	vs, _, _, _ := newTestVerification(t)
	ctx := context.Background()

	codeA, err := vs.Issue(ctx, "a@b.com")
	require.NoError(t, err)
	codeB, err := vs.Issue(ctx, "+14155550100")
	require.NoError(t, err)

	if codeA != codeB {
		assert.ErrorIs(t, vs.Verify(ctx, "+14155550100", codeA), models.ErrCodeInvalidOrExpired)
	}
	require.NoError(t, vs.Verify(ctx, "a@b.com", codeA))
	require.NoError(t, vs.Verify(ctx, "+14155550100", codeB))
}
