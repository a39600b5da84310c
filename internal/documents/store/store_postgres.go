package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bharatid/internal/documents/models"
	"bharatid/internal/platform/postgres"
	"bharatid/pkg/domain"
	"bharatid/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists document records in the document_records table.
// Writes join the transaction carried by ctx, if any.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Init(ctx context.Context, userID domain.UserID, now time.Time) error {
	types := domain.DocTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	query := `
		INSERT INTO document_records (user_id, doc_type, uploaded, verified, blob_key, updated_at)
		SELECT $1, unnest($2::text[]), FALSE, FALSE, NULL, $3
	`
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query, uuid.UUID(userID), pq.Array(names), now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("init document records: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID domain.UserID) (models.Set, error) {
	query := `
		SELECT doc_type, uploaded, verified, blob_key, updated_at
		FROM document_records
		WHERE user_id = $1
	`
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query document records: %w", err)
	}
	defer rows.Close()

	set := models.Set{}
	for rows.Next() {
		docType, rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		set[docType] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document records: %w", err)
	}
	if len(set) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return set, nil
}

func (s *PostgresStore) GetRecord(ctx context.Context, userID domain.UserID, docType domain.DocType) (models.Record, error) {
	query := `
		SELECT doc_type, uploaded, verified, blob_key, updated_at
		FROM document_records
		WHERE user_id = $1 AND doc_type = $2
	`
	row := postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(userID), docType.String())
	_, rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, sentinel.ErrNotFound
	}
	return rec, err
}

func (s *PostgresStore) MarkUploaded(ctx context.Context, userID domain.UserID, docType domain.DocType, blobKey string, now time.Time) error {
	query := `
		UPDATE document_records
		SET uploaded = TRUE, verified = FALSE, blob_key = $3, updated_at = $4
		WHERE user_id = $1 AND doc_type = $2 AND NOT verified
	`
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query, uuid.UUID(userID), docType.String(), blobKey, now)
	if err != nil {
		return fmt.Errorf("mark uploaded: %w", err)
	}
	return s.checkAffected(ctx, res, userID, docType)
}

func (s *PostgresStore) MarkVerified(ctx context.Context, userID domain.UserID, docType domain.DocType, now time.Time) error {
	query := `
		UPDATE document_records
		SET verified = TRUE, updated_at = $3
		WHERE user_id = $1 AND doc_type = $2 AND uploaded AND NOT verified
	`
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query, uuid.UUID(userID), docType.String(), now)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return s.checkAffected(ctx, res, userID, docType)
}

func (s *PostgresStore) ListAll(ctx context.Context) (map[domain.UserID]models.Set, error) {
	query := `
		SELECT user_id, doc_type, uploaded, verified, blob_key, updated_at
		FROM document_records
	`
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list document records: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.UserID]models.Set)
	for rows.Next() {
		var (
			rawID   uuid.UUID
			docType string
			rec     models.Record
			blobKey sql.NullString
		)
		if err := rows.Scan(&rawID, &docType, &rec.Uploaded, &rec.Verified, &blobKey, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document record: %w", err)
		}
		applyBlobKey(&rec, blobKey)
		id := domain.UserID(rawID)
		if out[id] == nil {
			out[id] = models.Set{}
		}
		out[id][domain.DocType(docType)] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document records: %w", err)
	}
	return out, nil
}

// checkAffected turns a zero-row conditional update into ErrNotFound or
// ErrInvalidState depending on whether the record exists.
func (s *PostgresStore) checkAffected(ctx context.Context, res sql.Result, userID domain.UserID, docType domain.DocType) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM document_records WHERE user_id = $1 AND doc_type = $2)`
	if err := postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(userID), docType.String()).Scan(&exists); err != nil {
		return fmt.Errorf("check document record: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.DocType, models.Record, error) {
	var (
		docType string
		rec     models.Record
		blobKey sql.NullString
	)
	if err := row.Scan(&docType, &rec.Uploaded, &rec.Verified, &blobKey, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.Record{}, err
		}
		return "", models.Record{}, fmt.Errorf("scan document record: %w", err)
	}
	applyBlobKey(&rec, blobKey)
	return domain.DocType(docType), rec, nil
}

func applyBlobKey(rec *models.Record, key sql.NullString) {
	if key.Valid {
		k := key.String
		rec.Path = &k
		rec.Encryption = models.EncryptionScheme
	}
}
