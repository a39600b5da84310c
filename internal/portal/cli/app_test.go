package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"bharatid/internal/documents/models"
	jwttoken "bharatid/internal/jwt_token"
	"bharatid/internal/portal"
	"bharatid/internal/portal/client"
	"bharatid/internal/portal/mocks"
	"bharatid/internal/portal/session"
	"bharatid/pkg/domain"
)

type fixture struct {
	gateway *mocks.MockGateway
	store   *session.MemoryStore
	out     *bytes.Buffer
	files   map[string][]byte
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = defaultIsTerminal })
	return &fixture{
		gateway: mocks.NewMockGateway(gomock.NewController(t)),
		store:   session.NewMemoryStore(),
		out:     &bytes.Buffer{},
		files:   map[string][]byte{},
	}
}

var defaultIsTerminal = isTerminal

func (f *fixture) app(t *testing.T, input string) *App {
	t.Helper()
	sess, err := session.Open(f.store)
	require.NoError(t, err)
	p := portal.New(f.gateway, sess, portal.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	a := NewApp(p, strings.NewReader(input), f.out)
	a.readFile = func(path string) ([]byte, error) {
		if data, ok := f.files[path]; ok {
			return data, nil
		}
		return nil, os.ErrNotExist
	}
	a.writeFile = func(path string, data []byte, _ os.FileMode) error {
		f.files[path] = data
		return nil
	}
	return a
}

func issue(t *testing.T, role domain.Role) string {
	t.Helper()
	issued, err := jwttoken.NewJWTService("test-key", "bharatid").GenerateAccessToken(domain.NewUserID(), role, time.Hour)
	require.NoError(t, err)
	return issued.Token
}

func TestRun_LoginThenStatus(t *testing.T) {
	f := newFixture(t)
	tok := issue(t, domain.RoleAdmin)
	set := models.NewSet()
	set[domain.DocTypeAadhaar] = models.Record{Uploaded: true}
	f.gateway.EXPECT().Login(gomock.Any(), "admin@example.in", "Passw0rd!").Return(tok, nil)
	f.gateway.EXPECT().FetchStatus(gomock.Any(), tok).Return(&client.Status{BiometricStatus: "secured", Documents: set}, nil)

	err := f.app(t, "login admin@example.in\nPassw0rd!\nstatus\nexit\n").Run(context.Background())

	require.NoError(t, err)
	out := f.out.String()
	assert.Contains(t, out, "Login successful. -> /admin-dashboard")
	assert.Contains(t, out, "Biometric data: secured")
	assert.Contains(t, out, "Pending Verification")
	assert.Contains(t, out, "Completion: 33% (1 of 3 uploaded, 0 verified)")
}

func TestExecute_GuardRedirects(t *testing.T) {
	t.Run("signed out status goes to login", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.app(t, "").Execute(context.Background(), []string{"status"}))

		assert.Contains(t, f.out.String(), "Please log in first. -> /login")
	})

	t.Run("user verify goes to dashboard without a request", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Save(issue(t, domain.RoleUser)))

		err := f.app(t, "").Execute(context.Background(), []string{"verify", "pan", domain.NewUserID().String()})

		require.NoError(t, err)
		assert.Contains(t, f.out.String(), "Admin access required. -> /dashboard")
	})
}

func TestExecute_UploadAndView(t *testing.T) {
	f := newFixture(t)
	tok := issue(t, domain.RoleUser)
	require.NoError(t, f.store.Save(tok))
	f.files["/tmp/pan.pdf"] = []byte("%PDF-1.7")
	after := models.NewSet()
	after[domain.DocTypePAN] = models.Record{Uploaded: true}
	f.gateway.EXPECT().UploadDocument(gomock.Any(), tok, domain.DocTypePAN, client.File{Filename: "pan.pdf", Data: []byte("%PDF-1.7")}).Return(nil)
	f.gateway.EXPECT().FetchStatus(gomock.Any(), tok).Return(&client.Status{Documents: after}, nil)
	f.gateway.EXPECT().ViewDocument(gomock.Any(), tok, domain.DocTypePAN, domain.UserID{}).
		Return(&client.Document{Data: []byte("%PDF-1.7"), ContentType: "application/pdf"}, nil)
	a := f.app(t, "")

	require.NoError(t, a.Execute(context.Background(), []string{"upload", "pan", "/tmp/pan.pdf"}))
	require.NoError(t, a.Execute(context.Background(), []string{"view", "pan", "/tmp/out.pdf"}))

	assert.Contains(t, f.out.String(), "Uploaded. Status is now pending verification.")
	assert.Equal(t, []byte("%PDF-1.7"), f.files["/tmp/out.pdf"])
}

func TestRun_PrintsErrorsAndContinues(t *testing.T) {
	f := newFixture(t)

	err := f.app(t, "frobnicate\nupload voter\n").Run(context.Background())

	require.NoError(t, err)
	out := f.out.String()
	assert.Contains(t, out, `unknown command "frobnicate"`)
	assert.Contains(t, out, "usage: upload <type> <file>")
}

func TestRunArgs(t *testing.T) {
	t.Run("unknown command fails", func(t *testing.T) {
		f := newFixture(t)

		ok := f.app(t, "").RunArgs(context.Background(), []string{"frobnicate"})

		assert.False(t, ok)
		assert.Contains(t, f.out.String(), `unknown command "frobnicate"`)
	})

	t.Run("help succeeds", func(t *testing.T) {
		f := newFixture(t)

		ok := f.app(t, "").RunArgs(context.Background(), []string{"help"})

		assert.True(t, ok)
		assert.Contains(t, f.out.String(), "Commands:")
	})
}
