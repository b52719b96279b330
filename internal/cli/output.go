package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/importer"
	"github.com/septivank/earthquake-catalog/internal/severity"
)

// OutputFormatter renders command results as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func (f *OutputFormatter) json(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Page renders one page of records.
func (f *OutputFormatter) Page(page int, result earthquake.PagedResult) error {
	if f.Format == "json" {
		return f.json(result)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLOCATION\tMAGNITUDE\tSEVERITY\tDATE")
	for _, r := range result.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Location, formatMagnitude(r.Magnitude), severity.Classify(r.Magnitude), earthquake.DisplayDate(r.Date))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	more := "no"
	if result.HasMore {
		more = "yes"
	}
	_, err := fmt.Fprintf(f.Writer, "page %d, %d shown, %d total, more: %s\n", page, len(result.Data), result.Count, more)
	return err
}

// Record renders a single record.
func (f *OutputFormatter) Record(r earthquake.Record) error {
	if f.Format == "json" {
		return f.json(r)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", r.ID)
	fmt.Fprintf(tw, "location:\t%s\n", r.Location)
	fmt.Fprintf(tw, "magnitude:\t%s (%s)\n", formatMagnitude(r.Magnitude), severity.Classify(r.Magnitude))
	fmt.Fprintf(tw, "date:\t%s\n", earthquake.DisplayDate(r.Date))
	fmt.Fprintf(tw, "created:\t%s\n", earthquake.DisplayDate(r.CreatedAt))
	fmt.Fprintf(tw, "updated:\t%s\n", earthquake.DisplayDate(r.UpdatedAt))
	return tw.Flush()
}

// Deleted renders the outcome of a delete.
func (f *OutputFormatter) Deleted(id string, deleted bool) error {
	if f.Format == "json" {
		return f.json(map[string]any{"id": id, "deleted": deleted})
	}
	_, err := fmt.Fprintf(f.Writer, "deleted %s\n", id)
	return err
}

func formatMagnitude(m float64) string {
	return strconv.FormatFloat(m, 'f', 1, 64)
}

// ImportSummary renders the outcome of a CSV import.
func (f *OutputFormatter) ImportSummary(s importer.Summary) error {
	if f.Format == "json" {
		return f.json(s)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "rows:\t%d\n", s.Total)
	fmt.Fprintf(tw, "valid:\t%d\n", s.Valid)
	fmt.Fprintf(tw, "invalid:\t%d (location %d, magnitude %d, date %d)\n", s.Invalid,
		s.ErrorsByField[importer.FieldLocation], s.ErrorsByField[importer.FieldMagnitude], s.ErrorsByField[importer.FieldDate])
	fmt.Fprintf(tw, "skipped:\t%d\n", s.Skipped)
	fmt.Fprintf(tw, "inserted:\t%d\n", s.Inserted)
	if s.FailedBatches > 0 {
		fmt.Fprintf(tw, "failed batches:\t%d\n", s.FailedBatches)
	}
	return tw.Flush()
}
