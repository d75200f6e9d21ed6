package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/admin"
	"github.com/frahmantamala/timesheet-management/internal/apiclient"
	"github.com/frahmantamala/timesheet-management/internal/employee"
	"github.com/frahmantamala/timesheet-management/internal/session"
	"github.com/frahmantamala/timesheet-management/internal/session/storage"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
	"github.com/spf13/cobra"
)

// app holds the client side of one CLI invocation.
type app struct {
	session    *session.Store
	api        *apiclient.Client
	timesheets *timesheet.Client
	admin      *admin.Client
	employees  *employee.Client
	logger     *slog.Logger
}

func newApp(ctx context.Context) (*app, error) {
	lg := logger.LoggerWrapper()

	store, err := storage.Open(cfg.Session, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	api := apiclient.New(apiclient.Config{
		BaseURL:   cfg.API.BaseURL,
		UserAgent: cfg.API.UserAgent,
	}, session.PersistedToken(store), lg)

	sess := session.NewStore(store, api, lg)
	sess.Restore(ctx)

	return &app{
		session:    sess,
		api:        api,
		timesheets: timesheet.NewClient(api),
		admin:      admin.NewClient(api),
		employees:  employee.NewClient(api),
		logger:     lg,
	}, nil
}

// requireIdentity fails when nobody is signed in, or when roles is not empty
// and the signed-in role is not in it.
func (a *app) requireIdentity(roles ...internal.Role) (session.Identity, error) {
	identity, err := a.session.RequireAuthenticated()
	if err != nil {
		return session.Identity{}, internal.NewUnauthorizedError("Not logged in; run `timesheet login` first", internal.ErrCodeNotAuthenticated)
	}
	if len(roles) == 0 {
		return identity, nil
	}
	for _, r := range roles {
		if identity.Role == r {
			return identity, nil
		}
	}
	return session.Identity{}, internal.NewForbiddenError(
		fmt.Sprintf("this command needs the %s role", joinRoles(roles)), internal.ErrCodeUnauthorizedAccess)
}

func joinRoles(roles []internal.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " or ")
}

// withApp runs fn with a fresh app bound to the command's context.
func withApp(fn func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, a, args)
	}
}
