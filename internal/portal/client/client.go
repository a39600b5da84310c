// Package client is the portal's typed gateway to the enrollment API. Every
// operation makes at most one attempt; a circuit breaker fails fast while the
// server is unreachable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	docModel "bharatid/internal/documents/models"
	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
	"bharatid/pkg/platform/circuit"
)

const maxErrorBody = 64 << 10

// File is an artifact sent in a multipart request.
type File struct {
	Filename string
	Data     []byte
}

// EnrollForm carries the enrollment profile fields.
type EnrollForm struct {
	FullName string
	Email    string
	Phone    string
	Aadhaar  string
	Password string
}

// Status is the body of the status endpoint.
type Status = docModel.StatusResponse

// Document is a retrieved artifact.
type Document struct {
	Data        []byte
	ContentType string
}

// User is one entry of the admin user listing.
type User struct {
	ID        domain.UserID `json:"_id"`
	FullName  string        `json:"full_name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Aadhaar   string        `json:"aadhaar"`
	Role      domain.Role   `json:"role"`
	CreatedAt time.Time     `json:"created_at"`
	Documents docModel.Set  `json:"documents"`
}

// Client calls the enrollment API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout sets the per-request timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient.Timeout = d
		}
	}
}

// WithBreaker sets the circuit breaker guarding outbound calls.
func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		if b != nil {
			cl.breaker = b
		}
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// New constructs a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = circuit.New("bharatid-api",
			circuit.WithFailureThreshold(3),
			circuit.WithOpenTimeout(10*time.Second),
			circuit.WithFailurePredicate(IsNetworkFailure),
			circuit.WithLogger(c.logger),
		)
	}
	return c
}

// IsNetworkFailure reports whether err is a transport level failure.
func IsNetworkFailure(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeNetworkFailure)
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, identifier, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Identifier: identifier, Password: password})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "encode login request")
	}
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", "", "application/json", bytes.NewReader(body), decodeJSON(&out)); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "no token in login response")
	}
	return out.Token, nil
}

// Enroll registers a new citizen with the identity document as idFile.
func (c *Client) Enroll(ctx context.Context, form EnrollForm, idFile File) error {
	fields := map[string]string{
		"fullName": form.FullName,
		"email":    form.Email,
		"phone":    form.Phone,
		"aadhaar":  form.Aadhaar,
		"password": form.Password,
	}
	body, contentType, err := multipartBody(fields, "idFile", idFile)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/enroll", "", contentType, body, nil)
}

func (c *Client) FetchStatus(ctx context.Context, token string) (*Status, error) {
	var out Status
	if err := c.do(ctx, http.MethodGet, "/api/biometric-status", token, "", nil, decodeJSON(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UploadDocument(ctx context.Context, token string, docType domain.DocType, file File) error {
	body, contentType, err := multipartBody(nil, "file", file)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/upload-document/"+url.PathEscape(docType.String()), token, contentType, body, nil)
}

// ViewDocument fetches an artifact. A nil owner means the caller's own.
func (c *Client) ViewDocument(ctx context.Context, token string, docType domain.DocType, owner domain.UserID) (*Document, error) {
	path := "/api/view-document/" + url.PathEscape(docType.String())
	if !owner.IsNil() {
		path += "?user_id=" + url.QueryEscape(owner.String())
	}
	var out Document
	err := c.do(ctx, http.MethodGet, path, token, "", nil, func(resp *http.Response) error {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeNetworkFailure, "server unreachable")
		}
		out = Document{Data: data, ContentType: resp.Header.Get("Content-Type")}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type verifyRequest struct {
	UserID string `json:"user_id"`
}

func (c *Client) VerifyDocument(ctx context.Context, token string, docType domain.DocType, target domain.UserID) error {
	body, err := json.Marshal(verifyRequest{UserID: target.String()})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode verify request")
	}
	return c.do(ctx, http.MethodPost, "/api/verify-document/"+url.PathEscape(docType.String()), token, "application/json", bytes.NewReader(body), nil)
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/logout", token, "", nil, nil)
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/api/all-users", token, "", nil, decodeJSON(&out)); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends one request through the breaker. onSuccess reads a 2xx response;
// nil discards the body.
func (c *Client) do(ctx context.Context, method, path, token, contentType string, body io.Reader, onSuccess func(*http.Response) error) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	err = c.breaker.Execute(func() error {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return dErrors.Wrap(err, dErrors.CodeNetworkFailure, "server unreachable")
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return decodeFailure(resp)
		}
		if onSuccess == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		return onSuccess(resp)
	})
	if errors.Is(err, circuit.ErrOpen) {
		return dErrors.Wrap(err, dErrors.CodeNetworkFailure, "server unreachable")
	}
	if err != nil {
		c.logger.DebugContext(ctx, "api call failed",
			"method", method,
			"path", path,
			"code", dErrors.CodeOf(err),
		)
	}
	return err
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// decodeFailure maps a non-2xx response onto a coded error. Authentication
// and authorization statuses are authoritative; for other 4xx the server's
// own code is kept.
func decodeFailure(resp *http.Response) error {
	var env errorEnvelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &env)

	msg := env.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return dErrors.New(dErrors.CodeUnauthorized, msg)
	case http.StatusForbidden:
		return dErrors.New(dErrors.CodeForbidden, msg)
	case http.StatusNotFound:
		return dErrors.New(dErrors.CodeNotFound, msg)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		if env.Error != "" {
			return dErrors.New(dErrors.Code(env.Error), msg)
		}
		if resp.StatusCode == http.StatusConflict {
			return dErrors.New(dErrors.CodeConflict, msg)
		}
		return dErrors.New(dErrors.CodeBadRequest, msg)
	}
	return dErrors.New(dErrors.CodeInternal, fmt.Sprintf("server error: %s", resp.Status))
}

func decodeJSON(dst any) func(*http.Response) error {
	return func(resp *http.Response) error {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "decode response")
		}
		return nil
	}
}

func multipartBody(fields map[string]string, fileField string, file File) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "encode form")
		}
	}
	if len(file.Data) > 0 {
		part, err := mw.CreateFormFile(fileField, file.Filename)
		if err != nil {
			return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "encode form")
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "encode form")
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "encode form")
	}
	return &buf, mw.FormDataContentType(), nil
}
