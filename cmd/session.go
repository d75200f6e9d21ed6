package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/frahmantamala/timesheet-management/internal/session"
	"github.com/frahmantamala/timesheet-management/internal/view"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginEmail    string
	loginPassword string

	registerDTO session.RegisterDTO
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		ask := newPrompter(cmd)
		email := loginEmail
		if email == "" {
			e, err := ask.Line("Email: ")
			if err != nil {
				return err
			}
			email = e
		}
		password := loginPassword
		if password == "" {
			p, err := ask.Secret("Password: ")
			if err != nil {
				return err
			}
			password = p
		}

		identity, err := a.session.Login(ctx, email, password)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Signed in as %s (%s)", identity.Name, identity.Role))
		printTabs(cmd, view.NewRouter(identity.Role))
		return nil
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		dto := registerDTO
		if dto.Password == "" {
			p, err := newPrompter(cmd).Secret("Password: ")
			if err != nil {
				return err
			}
			dto.Password = p
		}

		if err := a.session.Register(ctx, dto); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Registration successful! Please login."))
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the local session",
	RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app, _ []string) error {
		if err := a.session.Logout(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app, _ []string) error {
		identity, ok := a.session.Current()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", identity.Name, identity.Email, identity.Role)
		return nil
	}),
}

var tabsCmd = &cobra.Command{
	Use:   "tabs [tab]",
	Short: "List the tabs available to the signed-in role, or resolve one",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app, args []string) error {
		identity, err := a.requireIdentity()
		if err != nil {
			return err
		}

		router := view.NewRouter(identity.Role)
		if len(args) == 1 {
			tab, err := view.ParseTab(args[0])
			if err != nil {
				return err
			}
			if err := router.Select(tab); err != nil {
				return err
			}
		}
		printTabs(cmd, router)
		return nil
	}),
}

func printTabs(cmd *cobra.Command, router *view.Router) {
	out := cmd.OutOrStdout()
	for _, tab := range router.Tabs() {
		marker := " "
		if tab == router.Current() {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, tab)
	}
	fmt.Fprintf(out, "screen: %s\n", router.Resolve())
}

// prompter asks for missing values on the command's input. Secrets are read
// without echo when the input is a terminal.
type prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{in: cmd.InOrStdin(), out: cmd.ErrOrStderr()}
}

// Line reads one line.
func (p *prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if p.reader == nil {
		p.reader = bufio.NewReader(p.in)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Secret reads one line without echoing it on a terminal.
func (p *prompter) Secret(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Line(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(b), nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email (prompted when empty)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted when empty)")

	f := registerCmd.Flags()
	f.StringVar(&registerDTO.Name, "name", "", "full name")
	f.StringVar(&registerDTO.Email, "email", "", "email")
	f.StringVar(&registerDTO.Password, "password", "", "password (prompted when empty)")
	f.StringVar(&registerDTO.EmployeeID, "employee-id", "", "employee id")
	f.StringVar(&registerDTO.Department, "department", "", "department")
	f.StringVar(&registerDTO.Role, "role", "employee", "employee or admin")
}
