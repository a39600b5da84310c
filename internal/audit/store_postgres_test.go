package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bharatid/pkg/domain"
)

var auditColumns = []string{
	"occurred_at", "action", "user_id", "actor_id", "doc_type",
	"decision", "reason", "request_id", "client_ip",
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresStoreAppend(t *testing.T) {
	t.Run("writes a nil actor as NULL", func(t *testing.T) {
		store, mock := newMockStore(t)
		userID := domain.NewUserID()
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		mock.ExpectExec("INSERT INTO audit_events").
			WithArgs(sqlmock.AnyArg(), now, "document_uploaded",
				uuid.NullUUID{UUID: uuid.UUID(userID), Valid: true}, uuid.NullUUID{},
				"pan", "", "", "req-1", "10.0.0.1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.Append(context.Background(), Event{
			Timestamp: now,
			Action:    ActionDocumentUploaded,
			UserID:    userID,
			DocType:   domain.DocTypePAN,
			RequestID: "req-1",
			ClientIP:  "10.0.0.1",
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver failure is wrapped", func(t *testing.T) {
		store, mock := newMockStore(t)
		dbErr := errors.New("connection reset by peer")
		mock.ExpectExec("INSERT INTO audit_events").WillReturnError(dbErr)

		err := store.Append(context.Background(), Event{Action: ActionLogout, Timestamp: time.Now()})

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestPostgresStoreListRecent(t *testing.T) {
	store, mock := newMockStore(t)
	userID, adminID := domain.NewUserID(), domain.NewUserID()
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT occurred_at, action .* FROM audit_events ORDER BY occurred_at DESC LIMIT \\$1").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(auditColumns).
			AddRow(now, "document_verified", uuid.UUID(userID).String(), uuid.UUID(adminID).String(), "pan", "", "", "", "").
			AddRow(now.Add(-time.Minute), "login_failed", nil, nil, "", "", "invalid credentials", "", ""))

	events, err := store.ListRecent(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionDocumentVerified, events[0].Action)
	assert.Equal(t, userID, events[0].UserID)
	assert.Equal(t, adminID, events[0].ActorID)
	assert.Equal(t, domain.DocTypePAN, events[0].DocType)
	assert.True(t, events[1].UserID.IsNil())
	assert.Equal(t, "invalid credentials", events[1].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListByUser(t *testing.T) {
	store, mock := newMockStore(t)
	userID := domain.NewUserID()
	mock.ExpectQuery("FROM audit_events WHERE user_id = \\$1").
		WithArgs(uuid.UUID(userID)).
		WillReturnRows(sqlmock.NewRows(auditColumns))

	events, err := store.ListByUser(context.Background(), userID)

	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}
