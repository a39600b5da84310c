package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bharatid/pkg/platform/sentinel"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestInMemoryTRL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	trl := NewInMemoryTRL(WithClock(clock.Now))

	require.NoError(t, trl.RevokeToken(ctx, "jti-1", time.Minute))

	revoked, err := trl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = trl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	t.Run("entry expires with the token", func(t *testing.T) {
		clock.now = clock.now.Add(time.Minute)
		revoked, err := trl.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)
		assert.Zero(t, trl.Len())
	})

	t.Run("non-positive ttl is rejected", func(t *testing.T) {
		err := trl.RevokeToken(ctx, "jti-3", 0)
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)
	})

	t.Run("empty jti is a no-op", func(t *testing.T) {
		require.NoError(t, trl.RevokeToken(ctx, "", time.Minute))
		assert.Zero(t, trl.Len())
	})
}

func TestCheckerDelegates(t *testing.T) {
	ctx := context.Background()
	trl := NewInMemoryTRL()
	require.NoError(t, trl.RevokeToken(ctx, "jti", time.Hour))

	revoked, err := NewChecker(trl).IsTokenRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestPostgresTRL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	newTRL := func(t *testing.T) (*PostgresTRL, sqlmock.Sqlmock) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return NewPostgresTRL(db, WithPostgresClock(func() time.Time { return now })), mock
	}

	t.Run("revoke upserts with expiry", func(t *testing.T) {
		trl, mock := newTRL(t)
		mock.ExpectExec("INSERT INTO token_revocations").
			WithArgs("jti-1", now.Add(time.Hour)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, trl.RevokeToken(ctx, "jti-1", time.Hour))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown jti is not revoked", func(t *testing.T) {
		trl, mock := newTRL(t)
		mock.ExpectQuery("SELECT expires_at FROM token_revocations").
			WithArgs("jti-2").
			WillReturnRows(sqlmock.NewRows([]string{"expires_at"}))
		revoked, err := trl.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("expired entry is not revoked", func(t *testing.T) {
		trl, mock := newTRL(t)
		mock.ExpectQuery("SELECT expires_at FROM token_revocations").
			WillReturnRows(sqlmock.NewRows([]string{"expires_at"}).AddRow(now.Add(-time.Second)))
		revoked, err := trl.IsRevoked(ctx, "jti-3")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("query failure surfaces", func(t *testing.T) {
		trl, mock := newTRL(t)
		mock.ExpectQuery("SELECT expires_at FROM token_revocations").WillReturnError(errors.New("conn reset"))
		_, err := trl.IsRevoked(ctx, "jti-4")
		assert.Error(t, err)
	})

	t.Run("purge removes expired rows", func(t *testing.T) {
		trl, mock := newTRL(t)
		mock.ExpectExec("DELETE FROM token_revocations").
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 3))
		n, err := trl.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	})
}
