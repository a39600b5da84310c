package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bharatid/internal/enrollment/models"
	"bharatid/internal/platform/postgres"
	"bharatid/pkg/domain"
	"bharatid/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

const userColumns = `id, full_name, email, phone, aadhaar, password_hash, role, created_at`

// PostgresUserStore persists users in the users table. Writes join the
// transaction carried by ctx, if any.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Save(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(user.ID), user.FullName, user.Email, user.Phone, user.Aadhaar,
		user.PasswordHash, user.Role.String(), user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(id))
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, address string) (*models.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, address)
}

func (s *PostgresUserStore) FindByAadhaar(ctx context.Context, aadhaar string) (*models.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE aadhaar = $1`, aadhaar)
}

func (s *PostgresUserStore) List(ctx context.Context) ([]*models.User, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *PostgresUserStore) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	u, err := scanUser(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return u, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		u     models.User
		rawID uuid.UUID
		role  string
	)
	err := row.Scan(&rawID, &u.FullName, &u.Email, &u.Phone, &u.Aadhaar, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = domain.UserID(rawID)
	u.Role = domain.ParseRole(role)
	return &u, nil
}
