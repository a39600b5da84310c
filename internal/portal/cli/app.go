// Package cli is the interactive front end of the portal. It stands in for
// the web views: every command evaluates its route through the session guard
// before calling the portal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"bharatid/internal/documents/models"
	"bharatid/internal/portal"
	"bharatid/internal/portal/client"
	"bharatid/internal/portal/session"
	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
)

// ErrExit ends Run.
var ErrExit = errors.New("exit")

type App struct {
	portal    *portal.Portal
	in        *bufio.Reader
	out       io.Writer
	readFile  func(string) ([]byte, error)
	writeFile func(string, []byte, os.FileMode) error
}

func NewApp(p *portal.Portal, in io.Reader, out io.Writer) *App {
	return &App{
		portal:    p,
		in:        bufio.NewReader(in),
		out:       out,
		readFile:  os.ReadFile,
		writeFile: os.WriteFile,
	}
}

// Run reads commands until EOF or exit. Command failures are printed and
// the loop continues.
func (a *App) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.printf("bharatid %s> ", a.statusLine())
		line, err := a.in.ReadString('\n')
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return err
		}
		if args := strings.Fields(line); len(args) > 0 {
			if err := a.Execute(ctx, args); err != nil {
				if errors.Is(err, ErrExit) {
					return nil
				}
				a.printError(err)
			}
		}
		if eof {
			a.printf("\n")
			return nil
		}
	}
}

// RunArgs executes a single command given on the command line and reports
// whether it succeeded.
func (a *App) RunArgs(ctx context.Context, args []string) bool {
	if len(args) == 0 {
		return true
	}
	err := a.Execute(ctx, args)
	if err == nil || errors.Is(err, ErrExit) {
		return true
	}
	a.printError(err)
	return false
}

// Execute runs one command.
func (a *App) Execute(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		a.help()
		return nil
	case "exit", "quit":
		return ErrExit
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "enroll":
		return a.enroll(ctx)
	case "status":
		return a.status(ctx)
	case "upload":
		return a.upload(ctx, rest)
	case "view":
		return a.view(ctx, rest)
	case "verify":
		return a.verify(ctx, rest)
	case "users":
		return a.users(ctx)
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
}

func (a *App) help() {
	a.printf(`Commands:
  login [email|aadhaar]           sign in
  logout                          sign out
  enroll                          register a new citizen
  status                          show your documents
  upload <type> <file>            upload aadhaar, pan or passport
  view <type> <out> [user_id]     save a document to <out>
  verify <type> <user_id>         verify a pending document (admin)
  users                           list enrolled users (admin)
  exit
`)
}

func (a *App) statusLine() string {
	state := a.portal.Session().State()
	if !state.Authenticated {
		return "(signed out)"
	}
	return "(" + state.Role.String() + ")"
}

// navigate applies the guard for path. It reports false and prints the
// redirect when the view may not render.
func (a *App) navigate(path string) bool {
	outcome := a.portal.Guard().Evaluate(path)
	if outcome == session.Allow {
		return true
	}
	switch outcome {
	case session.RedirectLogin:
		a.printf("Please log in first. -> %s\n", outcome.Target())
	case session.RedirectForbidden:
		a.printf("Admin access required. -> %s\n", outcome.Target())
	}
	return false
}

func (a *App) login(ctx context.Context, args []string) error {
	var identifier string
	if len(args) > 0 {
		identifier = args[0]
	} else {
		var err error
		if identifier, err = prompt(a.in, a.out, "Email or Aadhaar"); err != nil {
			return err
		}
	}
	password, err := promptPassword(a.in, a.out)
	if err != nil {
		return err
	}
	landing, err := a.portal.Login(ctx, identifier, password)
	if err != nil {
		return err
	}
	a.printf("Login successful. -> %s\n", landing)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.portal.Logout(ctx); err != nil {
		return err
	}
	a.printf("Logged out. -> %s\n", session.PathLogin)
	return nil
}

func (a *App) enroll(ctx context.Context) error {
	var form client.EnrollForm
	fields := []struct {
		label string
		dst   *string
	}{
		{"Full name", &form.FullName},
		{"Email", &form.Email},
		{"Phone", &form.Phone},
		{"Aadhaar number", &form.Aadhaar},
	}
	for _, f := range fields {
		v, err := prompt(a.in, a.out, f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	pw, err := promptPassword(a.in, a.out)
	if err != nil {
		return err
	}
	form.Password = pw
	path, err := prompt(a.in, a.out, "Identity document file")
	if err != nil {
		return err
	}
	file, err := a.loadFile(path)
	if err != nil {
		return err
	}

	if err := a.portal.Enroll(ctx, form, file); err != nil {
		return err
	}
	a.printf("Enrollment successful. Your documents are pending verification. -> %s\n", session.PathLogin)
	return nil
}

func (a *App) status(ctx context.Context) error {
	if !a.navigate(session.PathDashboard) {
		return nil
	}
	dash, err := a.portal.Dashboard(ctx)
	if err != nil {
		return err
	}
	a.printf("Biometric data: %s\n", dash.BiometricStatus)
	a.printSet(dash.Documents)
	a.printf("Completion: %d%% (%d of %d uploaded, %d verified)\n",
		dash.Summary.CompletionPercent, dash.Summary.UploadedCount, dash.Summary.Total, dash.Summary.VerifiedCount)
	if len(dash.Violations) > 0 {
		a.printf("warning: inconsistent records reported for %v\n", dash.Violations)
	}
	return nil
}

func (a *App) upload(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: upload <type> <file>")
	}
	if !a.navigate(session.PathDashboard) {
		return nil
	}
	file, err := a.loadFile(args[1])
	if err != nil {
		return err
	}
	dash, err := a.portal.Upload(ctx, args[0], file)
	if err != nil {
		return err
	}
	a.printf("Uploaded. Status is now pending verification.\n")
	a.printSet(dash.Documents)
	return nil
}

func (a *App) view(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("usage: view <type> <out> [user_id]")
	}
	var owner domain.UserID
	if len(args) == 3 {
		if !a.navigate(session.PathAdminDashboard) {
			return nil
		}
		id, err := domain.ParseUserID(args[2])
		if err != nil {
			return err
		}
		owner = id
	} else if !a.navigate(session.PathDashboard) {
		return nil
	}

	doc, err := a.portal.View(ctx, args[0], owner)
	if err != nil {
		return err
	}
	if err := a.writeFile(args[1], doc.Data, 0o600); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	a.printf("Saved %d bytes (%s) to %s\n", len(doc.Data), doc.ContentType, args[1])
	return nil
}

func (a *App) verify(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: verify <type> <user_id>")
	}
	if !a.navigate(session.PathAdminDashboard) {
		return nil
	}
	target, err := domain.ParseUserID(args[1])
	if err != nil {
		return err
	}
	set, err := a.portal.Verify(ctx, args[0], target)
	if err != nil {
		return err
	}
	a.printf("%s verified successfully.\n", args[0])
	a.printSet(set)
	return nil
}

func (a *App) users(ctx context.Context) error {
	if !a.navigate(session.PathAdminDashboard) {
		return nil
	}
	users, err := a.portal.Users(ctx)
	if err != nil {
		return err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tAADHAAR\tPAN\tPASSPORT")
	for _, u := range users {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.FullName, u.Email, u.Role,
			models.DeriveStatus(u.Documents[domain.DocTypeAadhaar]).Label(),
			models.DeriveStatus(u.Documents[domain.DocTypePAN]).Label(),
			models.DeriveStatus(u.Documents[domain.DocTypePassport]).Label(),
		)
	}
	return tw.Flush()
}

func (a *App) printSet(set models.Set) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, t := range domain.DocTypes() {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\n", t.Label(), models.DeriveStatus(set[t]).Label())
	}
	_ = tw.Flush()
}

func (a *App) loadFile(path string) (client.File, error) {
	data, err := a.readFile(path)
	if err != nil {
		return client.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return client.File{Filename: filepath.Base(path), Data: data}, nil
}

func (a *App) printError(err error) {
	if msg := dErrors.MessageOf(err); msg != "" {
		a.printf("error: %s\n", msg)
		return
	}
	a.printf("error: %v\n", err)
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
