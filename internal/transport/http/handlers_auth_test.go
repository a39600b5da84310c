package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authModel "bharatid/internal/auth/models"
	"bharatid/internal/transport/http/mocks"
	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
	"bharatid/pkg/requestcontext"
	"bharatid/pkg/testutil"
)

type AuthHandlerSuite struct {
	suite.Suite
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) newHandler(t *testing.T) (*mocks.MockAuthService, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)

	mockService := mocks.NewMockAuthService(ctrl)
	handler := NewAuthHandler(mockService, discardLogger())
	r := chi.NewRouter()
	r.Post("/login", handler.handleLogin)
	r.Post("/logout", handler.handleLogout)
	return mockService, r
}

func (s *AuthHandlerSuite) TestHandler_Login() {
	validRequest := authModel.LoginRequest{Identifier: "citizen@example.in", Password: "Passw0rd!"}

	s.T().Run("valid credentials - 200 with token", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Login(gomock.Any(), validRequest).Return(&authModel.LoginResult{
			Message: authModel.MessageLoginSuccessful,
			Token:   "header.payload.signature",
		}, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/login", validRequest))

		testutil.AssertStatusOK(t, rr)
		got := testutil.UnmarshalResponse[authModel.LoginResult](t, rr)
		assert.Equal(t, "Login successful", got.Message)
		assert.Equal(t, "header.payload.signature", got.Token)
	})

	s.T().Run("invalid json - 400", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Login(gomock.Any(), gomock.Any()).Times(0)

		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodPost, "/login", "{bad-json"))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.T().Run("missing password - 400", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Login(gomock.Any(), gomock.Any()).Times(0)
		missing := validRequest
		missing.Password = ""

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/login", missing))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.T().Run("invalid credentials - 401", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/login", validRequest))

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
		body := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, string(dErrors.CodeUnauthorized), body["error"])
		assert.Equal(t, "invalid credentials", body["message"])
	})

	s.T().Run("store failure - 500 without detail", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/login", validRequest))

		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
		body := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, string(dErrors.CodeInternal), body["error"])
		assert.Empty(t, body["message"])
	})
}

func (s *AuthHandlerSuite) TestHandler_Logout() {
	userID := domain.NewUserID()
	expiresAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.T().Run("revokes the presented token - 200", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Logout(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
			assert.Equal(t, userID, requestcontext.UserID(ctx))
			assert.Equal(t, "jti-1", requestcontext.TokenID(ctx))
			return nil
		})
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodPost, "/logout"), userID, domain.RoleUser, "jti-1", expiresAt)

		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "message", "Logged out")
	})

	s.T().Run("revocation failure - 500", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Logout(gomock.Any()).Return(dErrors.New(dErrors.CodeInternal, "failed to revoke token"))
		req := testutil.WithAuth(testutil.NewRequest(t, http.MethodPost, "/logout"), userID, domain.RoleUser, "jti-1", expiresAt)

		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, string(dErrors.CodeInternal))
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
