package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"bharatid/internal/audit"
	"bharatid/internal/documents/blob"
	docmodels "bharatid/internal/documents/models"
	docservice "bharatid/internal/documents/service"
	docstore "bharatid/internal/documents/store"
	"bharatid/internal/enrollment/models"
	"bharatid/internal/enrollment/secrets"
	"bharatid/internal/enrollment/store"
	"bharatid/internal/platform/config"
	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
	"bharatid/pkg/requestcontext"
)

var idScan = docservice.File{Filename: "aadhaar.pdf", Data: []byte("%PDF-1.7\n%%EOF\n")}

type ServiceSuite struct {
	suite.Suite
	users   *store.InMemoryUserStore
	docs    *docservice.Service
	auditor *audit.Publisher
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.users = store.NewInMemoryUserStore()
	s.auditor = audit.NewPublisher(audit.NewInMemoryStore(), prometheus.NewRegistry())
	s.docs = docservice.New(docstore.NewInMemoryStore(), blob.NewMemoryStore(), s.auditor)
	s.service = New(s.users, s.docs, s.auditor)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
}

func validRequest() models.EnrollRequest {
	return models.EnrollRequest{
		FullName: "Asha Rao",
		Email:    " Asha@Example.in ",
		Phone:    "9876543210",
		Aadhaar:  "123456789012",
		Password: "Str0ng@pass",
	}
}

func (s *ServiceSuite) TestEnroll() {
	s.Run("creates a user with aadhaar pending and the rest not submitted", func() {
		res, err := s.service.Enroll(s.ctx, validRequest(), idScan)
		s.Require().NoError(err)
		s.Equal(models.StatusPendingVerification, res.Status)

		user, err := s.users.FindByID(s.ctx, res.UserID)
		s.Require().NoError(err)
		s.Equal("asha@example.in", user.Email)
		s.Equal(domain.RoleUser, user.Role)
		s.NoError(secrets.Verify("Str0ng@pass", user.PasswordHash))

		set, err := s.docs.Status(s.ctx, res.UserID)
		s.Require().NoError(err)
		s.Equal(docmodels.StatusPending, set[domain.DocTypeAadhaar].Status())
		s.Equal(docmodels.StatusNotSubmitted, set[domain.DocTypePAN].Status())
		s.Equal(docmodels.StatusNotSubmitted, set[domain.DocTypePassport].Status())

		events, err := s.auditor.ForUser(s.ctx, res.UserID)
		s.Require().NoError(err)
		s.Contains(actions(events), audit.ActionUserEnrolled)
	})

	s.Run("duplicate aadhaar is a conflict", func() {
		req := validRequest()
		req.Email = "other@example.in"
		_, err := s.service.Enroll(s.ctx, req, idScan)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("duplicate email is a conflict", func() {
		req := validRequest()
		req.Aadhaar = "999988887777"
		_, err := s.service.Enroll(s.ctx, req, idScan)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestEnrollValidation() {
	cases := []struct {
		name   string
		mutate func(*models.EnrollRequest)
		file   docservice.File
		code   dErrors.Code
	}{
		{"missing name", func(r *models.EnrollRequest) { r.FullName = "" }, idScan, dErrors.CodeValidation},
		{"short aadhaar", func(r *models.EnrollRequest) { r.Aadhaar = "1234" }, idScan, dErrors.CodeValidation},
		{"weak password", func(r *models.EnrollRequest) { r.Password = "password" }, idScan, dErrors.CodeValidation},
		{"bad email", func(r *models.EnrollRequest) { r.Email = "not-an-email" }, idScan, dErrors.CodeValidation},
		{"missing file", func(*models.EnrollRequest) {}, docservice.File{Filename: "id.pdf"}, dErrors.CodeBadRequest},
		{"wrong extension", func(*models.EnrollRequest) {}, docservice.File{Filename: "id.exe", Data: []byte("MZ")}, dErrors.CodeValidation},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := validRequest()
			tc.mutate(&req)
			_, err := s.service.Enroll(s.ctx, req, tc.file)
			s.True(dErrors.HasCode(err, tc.code), "got %v", err)
		})
	}

	users, err := s.users.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(users, "rejected enrollments store nothing")
}

type unavailableBlobs struct {
	blob.Store
}

func (unavailableBlobs) Put(context.Context, string, []byte) error {
	return errors.New("bucket unreachable")
}

func (s *ServiceSuite) TestEnrollRollsBackWhenTheUploadFails() {
	docStore := docstore.NewInMemoryStore()
	broken := New(s.users, docservice.New(docStore, unavailableBlobs{blob.NewMemoryStore()}, s.auditor), s.auditor)

	_, err := broken.Enroll(s.ctx, validRequest(), idScan)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal), "got %v", err)

	users, err := s.users.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(users, "a failed enrollment leaves no user behind")
	sets, err := docStore.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(sets)

	res, err := s.service.Enroll(s.ctx, validRequest(), idScan)
	s.Require().NoError(err, "retrying with the same identity succeeds")
	s.Equal(models.StatusPendingVerification, res.Status)
}

func (s *ServiceSuite) TestSeedAdmin() {
	seed := config.AdminSeed{Email: "Admin@BharatID.in", Aadhaar: "000011112222", Password: "Adm1n@pass"}

	s.Require().NoError(s.service.SeedAdmin(s.ctx, seed))
	s.Require().NoError(s.service.SeedAdmin(s.ctx, seed), "seeding twice is a no-op")

	admin, err := s.service.FindByIdentifier(s.ctx, "admin@bharatid.in")
	s.Require().NoError(err)
	s.Equal(domain.RoleAdmin, admin.Role)
	s.Equal("Administrator", admin.FullName)

	users, err := s.users.List(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 1)

	s.Run("empty email disables seeding", func() {
		s.NoError(s.service.SeedAdmin(s.ctx, config.AdminSeed{}))
	})

	s.Run("invalid aadhaar is rejected", func() {
		err := s.service.SeedAdmin(s.ctx, config.AdminSeed{Email: "x@bharatid.in", Aadhaar: "12", Password: "Adm1n@pass"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestFindByIdentifier() {
	res, err := s.service.Enroll(s.ctx, validRequest(), idScan)
	s.Require().NoError(err)

	byEmail, err := s.service.FindByIdentifier(s.ctx, "ASHA@example.in")
	s.Require().NoError(err)
	s.Equal(res.UserID, byEmail.ID)

	byAadhaar, err := s.service.FindByIdentifier(s.ctx, "123456789012")
	s.Require().NoError(err)
	s.Equal(res.UserID, byAadhaar.ID)

	_, err = s.service.FindByIdentifier(s.ctx, "000000000000")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestListUsers() {
	res, err := s.service.Enroll(s.ctx, validRequest(), idScan)
	s.Require().NoError(err)

	s.Run("requires the list capability", func() {
		_, err := s.service.ListUsers(s.ctx, domain.RoleUser)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("joins users with their documents", func() {
		list, err := s.service.ListUsers(s.ctx, domain.RoleAdmin)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(res.UserID, list[0].ID)
		s.True(list[0].Documents[domain.DocTypeAadhaar].Uploaded)
	})
}

func actions(events []audit.Event) []audit.Action {
	out := make([]audit.Action, 0, len(events))
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}
