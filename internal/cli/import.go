package cli

import (
	"fmt"
	"os"

	"github.com/septivank/earthquake-catalog/internal/db"
	"github.com/septivank/earthquake-catalog/internal/importer"
	"github.com/septivank/earthquake-catalog/internal/repository"
	"github.com/septivank/earthquake-catalog/internal/validator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		databaseURL string
		batchSize   int
	)

	cmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Bulk load a catalogue CSV export into the database",
		Long: `Bulk load a CSV with DateTime, Latitude, Longitude and Magnitude columns.

Rows missing a value are skipped, invalid rows are counted per field, and
valid rows are inserted in batches directly into PostgreSQL.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ctx := cmd.Context()
			pool, err := db.Open(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.EnsureSchema(ctx, pool); err != nil {
				return err
			}

			logger := rootOpts.logger()
			logger.Info("importing earthquakes", zap.String("file", args[0]))

			im := importer.New(repository.NewRepository(pool), validator.NewValidator(), logger).WithBatchSize(batchSize)
			summary, err := im.Import(ctx, f)
			if err != nil {
				return err
			}
			return (&OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}).ImportSummary(summary)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL (env DATABASE_URL)")
	cmd.Flags().IntVar(&batchSize, "batch-size", importer.DefaultBatchSize, "rows per insert batch")
	return cmd
}
