// Package screen holds the terminal renditions of the client screens. Each
// screen loads its own data through the typed API clients, renders it as a
// table and re-fetches the full list after every successful mutation.
package screen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/admin"
	"github.com/frahmantamala/timesheet-management/internal/apiclient"
	"github.com/frahmantamala/timesheet-management/internal/employee"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// TimesheetAPI is the employee-scoped timesheet surface.
type TimesheetAPI interface {
	List(ctx context.Context) ([]timesheet.Timesheet, error)
	Create(ctx context.Context, form timesheet.Form) (*timesheet.Timesheet, error)
	Update(ctx context.Context, id string, form timesheet.Form) (*timesheet.Timesheet, error)
	Delete(ctx context.Context, id string) error
	ExportCSV(ctx context.Context) (*apiclient.Blob, error)
	DownloadPDF(ctx context.Context) (*apiclient.Blob, error)
}

type AdminAPI interface {
	Timesheets(ctx context.Context, filter timesheet.Filter) ([]timesheet.Timesheet, error)
	Approve(ctx context.Context, id string) (*timesheet.Timesheet, error)
	Reject(ctx context.Context, id, comments string) (*timesheet.Timesheet, error)
	ExportCSV(ctx context.Context, filter timesheet.Filter) (*apiclient.Blob, error)
	Dashboard(ctx context.Context) (*admin.Stats, error)
}

type EmployeeAPI interface {
	List(ctx context.Context) ([]employee.Employee, error)
	Create(ctx context.Context, form employee.Form) (*employee.Employee, error)
	Update(ctx context.Context, id string, form employee.Form) (*employee.Employee, error)
	Delete(ctx context.Context, id string) error
}

// reported wraps an error whose message the screen already shows inline.
type reported struct {
	error
}

func (r reported) Unwrap() error { return r.error }

// IsReported tells the CLI not to print err a second time.
func IsReported(err error) bool {
	var r reported
	return errors.As(err, &r)
}

// Message is the user-facing text of err.
func Message(err error) string {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.Type == internal.ErrorTypeNetwork {
			return "could not reach the server"
		}
		return appErr.GetDetailedMessage()
	}
	return err.Error()
}

type notice struct {
	text   string
	failed bool
}

// base carries what every screen shares: the logger and the last inline
// message.
type base struct {
	logger *slog.Logger
	notice notice
}

func newBase(logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{logger: logger}
}

func (b *base) fail(ctx context.Context, action string, err error) error {
	b.logger.ErrorContext(ctx, action+" failed", "error", err)
	b.notice = notice{text: fmt.Sprintf("%s: %s", action, Message(err)), failed: true}
	if apiclient.IsUnauthorized(err) {
		b.notice.text += " (session may have expired; run `timesheet login`)"
	}
	return reported{err}
}

func (b *base) succeed(text string) {
	b.notice = notice{text: text}
}

// Notice returns the last inline message, empty when there is none.
func (b *base) Notice() string {
	return b.notice.text
}

func (b *base) renderNotice(w io.Writer) {
	if b.notice.text == "" {
		return
	}
	if b.notice.failed {
		fmt.Fprintln(w, color.RedString(b.notice.text))
		return
	}
	fmt.Fprintln(w, color.GreenString(b.notice.text))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(title))
}

func statusLabel(s timesheet.Status) string {
	switch s {
	case timesheet.StatusPending:
		return color.YellowString(string(s))
	case timesheet.StatusAccepted:
		return color.GreenString(string(s))
	case timesheet.StatusRejected:
		return color.RedString(string(s))
	}
	return string(s)
}

// cell flattens a free-text field onto one table row.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "-"
	}
	const max = 40
	if r := []rune(s); len(r) > max {
		return string(r[:max-3]) + "..."
	}
	return s
}

func find(items []timesheet.Timesheet, id string) (timesheet.Timesheet, bool) {
	for _, t := range items {
		if t.ID == id {
			return t, true
		}
	}
	return timesheet.Timesheet{}, false
}
