// Package cli implements the quakectl command tree.
package cli

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/septivank/earthquake-catalog/internal/client"
	"github.com/septivank/earthquake-catalog/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	API     string
	Format  string // "json" | "text"
	Timeout time.Duration
	Verbose bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the quakectl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "quakectl",
		Short: "Browse and edit the earthquake catalogue",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	defaultAPI := os.Getenv("QUAKE_API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}

	cmd.PersistentFlags().StringVar(&opts.API, "api", defaultAPI, "earthquake API base URL (env QUAKE_API_URL)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 15*time.Second, "request timeout")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log requests to stderr")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

func (o *RootOptions) logger() *zap.Logger {
	level := "error"
	if o.Verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger("quakectl", level)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (o *RootOptions) client() *client.Client {
	return client.New(o.API, o.Timeout, o.logger())
}
