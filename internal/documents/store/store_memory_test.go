package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bharatid/internal/documents/models"
	"bharatid/pkg/domain"
	"bharatid/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store  *InMemoryStore
	ctx    context.Context
	now    time.Time
	userID domain.UserID
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	s.userID = domain.NewUserID()
	s.Require().NoError(s.store.Init(s.ctx, s.userID, s.now))
}

func (s *InMemoryStoreSuite) TestInit() {
	s.Run("creates every type not submitted", func() {
		set, err := s.store.Get(s.ctx, s.userID)
		s.Require().NoError(err)
		s.Len(set, len(domain.DocTypes()))
		for _, rec := range set {
			s.Equal(models.StatusNotSubmitted, rec.Status())
		}
	})

	s.Run("second init conflicts", func() {
		s.ErrorIs(s.store.Init(s.ctx, s.userID, s.now), sentinel.ErrConflict)
	})
}

func (s *InMemoryStoreSuite) TestGetUnknownUser() {
	_, err := s.store.Get(s.ctx, domain.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.GetRecord(s.ctx, domain.NewUserID(), domain.DocTypePAN)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestUploadThenVerify() {
	s.Require().NoError(s.store.MarkUploaded(s.ctx, s.userID, domain.DocTypePAN, "blob-pan", s.now))

	rec, err := s.store.GetRecord(s.ctx, s.userID, domain.DocTypePAN)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, rec.Status())
	s.Equal("blob-pan", rec.BlobKey())

	s.Require().NoError(s.store.MarkVerified(s.ctx, s.userID, domain.DocTypePAN, s.now))
	rec, err = s.store.GetRecord(s.ctx, s.userID, domain.DocTypePAN)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, rec.Status())

	s.Run("verify is not repeatable", func() {
		s.ErrorIs(s.store.MarkVerified(s.ctx, s.userID, domain.DocTypePAN, s.now), sentinel.ErrInvalidState)
	})
	s.Run("verified cannot be re-uploaded", func() {
		s.ErrorIs(s.store.MarkUploaded(s.ctx, s.userID, domain.DocTypePAN, "other", s.now), sentinel.ErrInvalidState)
	})
}

func (s *InMemoryStoreSuite) TestVerifyRequiresUpload() {
	s.ErrorIs(s.store.MarkVerified(s.ctx, s.userID, domain.DocTypePassport, s.now), sentinel.ErrInvalidState)
	s.ErrorIs(s.store.MarkVerified(s.ctx, domain.NewUserID(), domain.DocTypePassport, s.now), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestReturnedSetsAreCopies() {
	s.Require().NoError(s.store.MarkUploaded(s.ctx, s.userID, domain.DocTypeAadhaar, "blob-a", s.now))
	set, err := s.store.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	*set[domain.DocTypeAadhaar].Path = "tampered"
	set[domain.DocTypePAN] = models.Record{Verified: true}

	again, err := s.store.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal("blob-a", again[domain.DocTypeAadhaar].BlobKey())
	s.False(again[domain.DocTypePAN].Verified)
}

func (s *InMemoryStoreSuite) TestListAll() {
	other := domain.NewUserID()
	s.Require().NoError(s.store.Init(s.ctx, other, s.now))

	all, err := s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Contains(all, s.userID)
	s.Contains(all, other)
}
