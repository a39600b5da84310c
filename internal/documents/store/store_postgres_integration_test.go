//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bharatid/internal/documents/models"
	"bharatid/pkg/domain"
	"bharatid/pkg/platform/sentinel"
	"bharatid/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgresStore(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

func (s *PostgresStoreSuite) seedUser() domain.UserID {
	id := domain.NewUserID()
	_, err := s.pg.DB.ExecContext(s.ctx, `
		INSERT INTO users (id, full_name, email, phone, aadhaar, password_hash, role, created_at)
		VALUES ($1, 'Test', $2, '9999999999', $3, 'x', 'user', now())`,
		uuid.UUID(id), id.String()+"@example.in", id.String()[:12])
	s.Require().NoError(err)
	s.Require().NoError(s.store.Init(s.ctx, id, time.Now()))
	return id
}

func (s *PostgresStoreSuite) TestVerificationLifecycle() {
	id := s.seedUser()

	s.ErrorIs(s.store.MarkVerified(s.ctx, id, domain.DocTypePAN, time.Now()), sentinel.ErrInvalidState)
	s.Require().NoError(s.store.MarkUploaded(s.ctx, id, domain.DocTypePAN, "blob-1", time.Now()))
	s.Require().NoError(s.store.MarkVerified(s.ctx, id, domain.DocTypePAN, time.Now()))
	s.ErrorIs(s.store.MarkVerified(s.ctx, id, domain.DocTypePAN, time.Now()), sentinel.ErrInvalidState)
	s.ErrorIs(s.store.MarkUploaded(s.ctx, id, domain.DocTypePAN, "blob-2", time.Now()), sentinel.ErrInvalidState)

	set, err := s.store.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, set[domain.DocTypePAN].Status())
	s.Equal("blob-1", set[domain.DocTypePAN].BlobKey())
	s.Equal(models.StatusNotSubmitted, set[domain.DocTypePassport].Status())
}

func (s *PostgresStoreSuite) TestInitTwiceConflicts() {
	id := s.seedUser()
	s.ErrorIs(s.store.Init(s.ctx, id, time.Now()), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUnknownUser() {
	s.ErrorIs(s.store.MarkVerified(s.ctx, domain.NewUserID(), domain.DocTypePAN, time.Now()), sentinel.ErrNotFound)
}
