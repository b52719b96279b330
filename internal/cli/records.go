package cli

import (
	"context"
	"net/url"

	"github.com/septivank/earthquake-catalog/internal/client"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/urlstate"
	"github.com/spf13/cobra"
)

// listFlags maps command flags onto query-state keys.
var listFlags = []struct {
	flag, key, usage string
}{
	{"location", urlstate.KeyLocation, "case-insensitive location substring"},
	{"magnitude-from", urlstate.KeyMagnitudeFrom, "minimum magnitude, inclusive"},
	{"magnitude-to", urlstate.KeyMagnitudeTo, "maximum magnitude, inclusive"},
	{"date-from", urlstate.KeyDateFrom, "earliest date, inclusive"},
	{"date-to", urlstate.KeyDateTo, "latest date, inclusive"},
	{"page", urlstate.KeyPage, "page number, from 1"},
	{"limit", urlstate.KeyLimit, "records per page, at most 100"},
	{"sort", urlstate.KeySortField, "sort field (date|magnitude|location|createdAt|updatedAt)"},
	{"dir", urlstate.KeySortDir, "sort direction (asc|desc)"},
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	values := make(map[string]*string, len(listFlags))

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List earthquakes one page at a time",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			for _, f := range listFlags {
				if cmd.Flags().Changed(f.flag) {
					query.Set(f.key, *values[f.flag])
				}
			}
			req, err := urlstate.Decode(query)
			if err != nil {
				return err
			}
			return runList(cmd.Context(), rootOpts, cmd, req)
		},
	}

	for _, f := range listFlags {
		values[f.flag] = cmd.Flags().String(f.flag, "", f.usage)
	}
	return cmd
}

func runList(ctx context.Context, opts *RootOptions, cmd *cobra.Command, req earthquake.QueryRequest) error {
	view := client.NewView(opts.client(), client.NewSynchronizer(), req, opts.logger())
	result, err := view.Load(ctx)
	if err != nil {
		return err
	}

	page := earthquake.DefaultPage
	if req.Page != nil {
		page = *req.Page
	}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Page(page, result)
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "get <id>",
		Short:        "Show one earthquake",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := rootOpts.client().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return (&OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}).Record(rec)
		},
	}
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var in earthquake.CreateInput

	cmd := &cobra.Command{
		Use:          "create",
		Short:        "Record a new earthquake",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := rootOpts.client().Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return (&OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}).Record(rec)
		},
	}

	cmd.Flags().StringVar(&in.Location, "location", "", `coordinates as "latitude, longitude"`)
	cmd.Flags().Float64Var(&in.Magnitude, "magnitude", 0, "magnitude between 0.1 and 10")
	cmd.Flags().StringVar(&in.Date, "date", "", "when it happened (ISO-8601 or epoch)")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("magnitude")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		location, date string
		magnitude      float64
	)

	cmd := &cobra.Command{
		Use:          "update <id>",
		Short:        "Change fields of an earthquake",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in earthquake.UpdateInput
			if cmd.Flags().Changed("location") {
				in.Location = &location
			}
			if cmd.Flags().Changed("magnitude") {
				in.Magnitude = &magnitude
			}
			if cmd.Flags().Changed("date") {
				in.Date = &date
			}

			rec, err := rootOpts.client().Update(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return (&OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}).Record(rec)
		},
	}

	cmd.Flags().StringVar(&location, "location", "", `coordinates as "latitude, longitude"`)
	cmd.Flags().Float64Var(&magnitude, "magnitude", 0, "magnitude between 0.1 and 10")
	cmd.Flags().StringVar(&date, "date", "", "when it happened (ISO-8601 or epoch)")
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "delete <id>",
		Short:        "Remove an earthquake",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := rootOpts.client().Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return (&OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}).Deleted(args[0], deleted)
		},
	}
}
