package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/septivank/earthquake-catalog/internal/db"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
)

var sortColumns = map[earthquake.SortField]string{
	earthquake.SortByDate:      "date",
	earthquake.SortByMagnitude: "magnitude",
	earthquake.SortByLocation:  "location",
	earthquake.SortByCreatedAt: "created_at",
	earthquake.SortByUpdatedAt: "updated_at",
}

// buildWhere renders f as a conjunction of parameterised predicates.
// Placeholders continue numbering after the args already collected.
func buildWhere(f earthquake.Filter, args []any) (string, []any) {
	var clauses []string
	add := func(format string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}

	if f.Location != "" {
		add("strpos(lower(location), lower($%d)) > 0", f.Location)
	}
	if f.MagnitudeFrom != nil {
		add("magnitude >= $%d", *f.MagnitudeFrom)
	}
	if f.MagnitudeTo != nil {
		add("magnitude <= $%d", *f.MagnitudeTo)
	}
	if f.DateFrom != nil {
		add("date >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("date <= $%d", *f.DateTo)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// buildOrderBy always appends id as a tie-breaker so equal sort keys keep
// a stable position across pages.
func buildOrderBy(s earthquake.Sort) string {
	column, ok := sortColumns[s.Field]
	if !ok {
		column = sortColumns[earthquake.DefaultSort.Field]
	}
	direction := "DESC"
	if s.Direction == earthquake.Asc {
		direction = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", column, direction)
}

func buildListQuery(q earthquake.ListQuery) (string, []any) {
	where, args := buildWhere(q.Filter, nil)
	args = append(args, q.Take, q.Skip)
	query := "SELECT " + db.Columns + " FROM earthquakes" + where + buildOrderBy(q.Sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return query, args
}

func buildCountQuery(f earthquake.Filter) (string, []any) {
	where, args := buildWhere(f, nil)
	return "SELECT count(*) FROM earthquakes" + where, args
}

func buildUpdateQuery(id uuid.UUID, patch earthquake.Patch) (string, []any) {
	args := []any{id}
	sets := []string{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Location != nil {
		set("location", *patch.Location)
	}
	if patch.Magnitude != nil {
		set("magnitude", *patch.Magnitude)
	}
	if patch.Date != nil {
		set("date", *patch.Date)
	}
	sets = append(sets, "updated_at = now()")

	query := "UPDATE earthquakes SET " + strings.Join(sets, ", ") +
		" WHERE id = $1 RETURNING " + db.Columns
	return query, args
}
