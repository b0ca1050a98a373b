package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"charthub/internal/hub"
	"charthub/internal/logic"
	"charthub/internal/session"
)

var errNotSignedIn = errors.New("not signed in, run 'charthub login' first")

func newListCmd(opts *options) *cobra.Command {
	var output string

	c := &cobra.Command{
		Use:   "list",
		Short: "List the chart repositories of the active scope",
		Long: strings.TrimSpace(`
List the chart repositories of your personal scope, or of the organization
given with --org or saved in the config.

Formats:
  table (default) - aligned columns
  json            - machine-readable JSON
  yaml            - YAML`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}

			a, err := setup(cmd, opts, nil)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
			defer cancel()

			list := logic.NewRepositoryList(a.client, a.scope())
			if err := list.Load(ctx, a.scope()); err != nil {
				if hub.IsLoginRedirect(err) {
					return errNotSignedIn
				}
				return fmt.Errorf("failed to list chart repositories: %w", err)
			}
			return printRepositories(cmd.OutOrStdout(), format, list.Repositories())
		},
	}
	c.Flags().StringVarP(&output, "output", "o", string(formatTable), "Output format: table|json|yaml")
	return c
}

func newLoginCmd(opts *options, stdin io.Reader) *cobra.Command {
	var email string

	c := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the hub",
		Long: strings.TrimSpace(`
Sign in with your email address and password. The password is read from the
terminal without echo, or from the next line of standard input.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, opts, nil)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			reader := bufio.NewReader(stdin)
			if email == "" {
				fmt.Fprint(out, "Email: ")
				if email, err = readLine(reader); err != nil {
					return fmt.Errorf("failed to read email: %w", err)
				}
			}
			password, err := readPassword(out, stdin, reader)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
			defer cancel()

			sessions := session.NewStore(a.client)
			if err := sessions.SignIn(ctx, email, password); err != nil {
				if hub.IsLoginRedirect(err) {
					return errors.New("invalid email or password")
				}
				return err
			}
			if err := a.saveSession(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Signed in as %s\n", sessions.Current().Alias())
			return nil
		},
	}
	c.Flags().StringVar(&email, "email", "", "Email address, prompted for when empty")
	return c
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, opts, nil)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
			defer cancel()

			// An expired session is as good as signed out
			if err := session.NewStore(a.client).SignOut(ctx); err != nil && !hub.IsLoginRedirect(err) {
				return fmt.Errorf("failed to sign out: %w", err)
			}
			a.client.SetSessionCookie("")
			if err := a.saveSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who is signed in and the active scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, opts, nil)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
			defer cancel()

			sessions := session.NewStore(a.client)
			if err := sessions.Resolve(ctx); err != nil {
				return err
			}
			current := sessions.Current()
			if current.Status != session.StatusAuthenticated {
				return errNotSignedIn
			}

			scope := "personal"
			if !a.scope().IsPersonal() {
				scope = "organization " + a.scope().Org
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s on %s (%s)\n", current.Alias(), a.cfg.HubURL, scope)
			return nil
		},
	}
}

// readPassword reads without echo from a terminal, otherwise one line
func readPassword(out io.Writer, stdin io.Reader, reader *bufio.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		return string(b), err
	}
	return readLine(reader)
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
