package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type loginOptions struct {
	email    string
	password string
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a session token",
		Long: `Log in with the admin credentials and print the session token.

Export the token as NEXTSHOP_TOKEN or pass it with --token to run
commands that need a session.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			resp, err := rootOpts.client().Login(cmd.Context(), opts.email, opts.password)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(resp, func(w io.Writer) {
				if resp.User != nil {
					fmt.Fprintf(w, "Logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
				}
				fmt.Fprintf(w, "Session expires in %ds\n", resp.ExpiresIn)
				fmt.Fprintf(w, "export NEXTSHOP_TOKEN=%s\n", resp.Token)
			})
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&opts.password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "logout",
		Short:         "Revoke the session token",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			if err := rootOpts.client().Logout(cmd.Context()); err != nil {
				return out.Fail(err)
			}
			return out.Success(map[string]bool{"ok": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Logged out")
			})
		},
	}
}
