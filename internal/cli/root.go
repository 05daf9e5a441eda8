package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/example/nextshop-catalog/client"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server  string
	Token   string
	Timeout time.Duration
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for nextshopctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "nextshopctl",
		Short: "nextshopctl - NextShop catalog client",
		Long:  "Browse and add catalog items on a NextShop backend.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		// main reports errors so JSON output stays parseable.
		SilenceErrors: true,
	}

	server := os.Getenv("NEXTSHOP_SERVER")
	if server == "" {
		server = "http://localhost:9876"
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", server, "backend base URL")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", os.Getenv("NEXTSHOP_TOKEN"), "session token (env NEXTSHOP_TOKEN)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", client.DefaultTimeout, "per-request timeout")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewItemsCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))

	return cmd
}

func (o *RootOptions) client() *client.Client {
	return client.New(o.Server, client.WithToken(o.Token), client.WithTimeout(o.Timeout))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
