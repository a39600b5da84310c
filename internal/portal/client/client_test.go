package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	docModel "bharatid/internal/documents/models"
	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
	"bharatid/pkg/platform/circuit"
	"bharatid/pkg/platform/httputil"
)

type ClientSuite struct {
	suite.Suite
	mux    *http.ServeMux
	server *httptest.Server
	client *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.mux = http.NewServeMux()
	s.server = httptest.NewServer(s.mux)
	s.client = New(s.server.URL, WithLogger(discardLogger()))
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) TestLogin() {
	s.mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
		if req.Identifier == "asha@example.in" && req.Password == "Passw0rd!" {
			httputil.WriteJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Token: "a.b.c"})
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
	})

	tok, err := s.client.Login(context.Background(), "asha@example.in", "Passw0rd!")
	s.Require().NoError(err)
	s.Equal("a.b.c", tok)

	_, err = s.client.Login(context.Background(), "asha@example.in", "wrong")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal("invalid credentials", dErrors.MessageOf(err))
}

func (s *ClientSuite) TestBearerTransport() {
	var gotAuth string
	s.mux.HandleFunc("GET /api/biometric-status", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		set := docModel.NewSet()
		set[domain.DocTypeAadhaar] = docModel.Record{Uploaded: true}
		httputil.WriteJSON(w, http.StatusOK, docModel.StatusResponse{BiometricStatus: "secured", Documents: set})
	})

	status, err := s.client.FetchStatus(context.Background(), "tok-123")

	s.Require().NoError(err)
	s.Equal("Bearer tok-123", gotAuth)
	s.Equal("secured", status.BiometricStatus)
	s.Equal(docModel.StatusPending, docModel.DeriveStatus(status.Documents[domain.DocTypeAadhaar]))
}

func (s *ClientSuite) TestUploadAndEnrollSendMultipart() {
	s.mux.HandleFunc("POST /api/upload-document/{docType}", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("pan", r.PathValue("docType"))
		f, hdr, err := r.FormFile("file")
		s.Require().NoError(err)
		data, _ := io.ReadAll(f)
		s.Equal("pan.pdf", hdr.Filename)
		s.Equal([]byte("%PDF-1.7"), data)
		httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "Pan uploaded successfully"})
	})
	s.mux.HandleFunc("POST /api/enroll", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Asha Rao", r.FormValue("fullName"))
		s.Equal("123412341234", r.FormValue("aadhaar"))
		_, hdr, err := r.FormFile("idFile")
		s.Require().NoError(err)
		s.Equal("id.png", hdr.Filename)
		httputil.WriteJSON(w, http.StatusCreated, httputil.MessageResponse{Message: "Enrollment successful"})
	})

	s.Require().NoError(s.client.UploadDocument(context.Background(), "tok", domain.DocTypePAN,
		File{Filename: "pan.pdf", Data: []byte("%PDF-1.7")}))
	s.Require().NoError(s.client.Enroll(context.Background(),
		EnrollForm{FullName: "Asha Rao", Email: "a@example.in", Phone: "9876543210", Aadhaar: "123412341234", Password: "Passw0rd!"},
		File{Filename: "id.png", Data: []byte{0x89, 'P', 'N', 'G'}}))
}

func (s *ClientSuite) TestViewDocument() {
	owner := domain.NewUserID()
	s.mux.HandleFunc("GET /api/view-document/{docType}", func(w http.ResponseWriter, r *http.Request) {
		s.Equal(owner.String(), r.URL.Query().Get("user_id"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	})

	doc, err := s.client.ViewDocument(context.Background(), "tok", domain.DocTypePassport, owner)

	s.Require().NoError(err)
	s.Equal("application/pdf", doc.ContentType)
	s.Equal([]byte("%PDF-1.7"), doc.Data)
}

func (s *ClientSuite) TestVerifyDocumentSendsTarget() {
	target := domain.NewUserID()
	s.mux.HandleFunc("POST /api/verify-document/{docType}", func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
		s.Equal(target.String(), req.UserID)
		httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "aadhaar verified successfully"})
	})

	s.NoError(s.client.VerifyDocument(context.Background(), "tok", domain.DocTypeAadhaar, target))
}

func (s *ClientSuite) TestFailureMapping() {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode dErrors.Code
	}{
		{name: "401", status: http.StatusUnauthorized, body: `{"error":"unauthorized","message":"Token missing"}`, wantCode: dErrors.CodeUnauthorized},
		{name: "403", status: http.StatusForbidden, body: `{"error":"forbidden"}`, wantCode: dErrors.CodeForbidden},
		{name: "404", status: http.StatusNotFound, body: `{"error":"not_found"}`, wantCode: dErrors.CodeNotFound},
		{name: "400 invalid type", status: http.StatusBadRequest, body: `{"error":"invalid_document_type"}`, wantCode: dErrors.CodeInvalidDocumentType},
		{name: "400 verification failed", status: http.StatusBadRequest, body: `{"error":"verification_failed"}`, wantCode: dErrors.CodeVerificationFailed},
		{name: "409", status: http.StatusConflict, body: `{"error":"conflict"}`, wantCode: dErrors.CodeConflict},
		{name: "409 without envelope", status: http.StatusConflict, body: `oops`, wantCode: dErrors.CodeConflict},
		{name: "422 validation", status: http.StatusUnprocessableEntity, body: `{"error":"validation_error"}`, wantCode: dErrors.CodeValidation},
		{name: "500", status: http.StatusInternalServerError, body: `{"error":"internal_error"}`, wantCode: dErrors.CodeInternal},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL, WithLogger(discardLogger())).Logout(context.Background(), "tok")

			s.Equal(tt.wantCode, dErrors.CodeOf(err))
		})
	}
}

func TestClient_NetworkFailureOpensBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	addr := srv.URL
	srv.Close()

	breaker := circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithOpenTimeout(time.Minute),
		circuit.WithFailurePredicate(IsNetworkFailure), circuit.WithLogger(discardLogger()))
	c := New(addr, WithBreaker(breaker), WithLogger(discardLogger()))

	for range 2 {
		_, err := c.FetchStatus(context.Background(), "tok")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNetworkFailure))
		assert.Equal(t, "server unreachable", dErrors.MessageOf(err))
	}
	assert.True(t, breaker.IsOpen())

	_, err := c.FetchStatus(context.Background(), "tok")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNetworkFailure))
	assert.ErrorIs(t, err, circuit.ErrOpen)
	assert.Zero(t, hits.Load())
}

func TestClient_RejectionsDoNotOpenBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "Access denied"))
	}))
	defer srv.Close()
	breaker := circuit.New("test", circuit.WithFailureThreshold(1),
		circuit.WithFailurePredicate(IsNetworkFailure), circuit.WithLogger(discardLogger()))
	c := New(srv.URL, WithBreaker(breaker), WithLogger(discardLogger()))

	for range 3 {
		err := c.VerifyDocument(context.Background(), "tok", domain.DocTypePAN, domain.NewUserID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	}
	assert.False(t, breaker.IsOpen())
}

func TestClient_CanceledContextIsNotANetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL, WithLogger(discardLogger())).ListUsers(ctx, "tok")

	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, IsNetworkFailure(err))
}
