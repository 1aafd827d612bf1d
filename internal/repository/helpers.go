package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

func execOr(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}

// whereBuilder accumulates positional conditions for list queries.
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

func (w *whereBuilder) add(format string, value interface{}) {
	w.args = append(w.args, value)
	w.conditions = append(w.conditions, fmt.Sprintf(format, len(w.args)))
}

func (w *whereBuilder) addRaw(condition string) {
	w.conditions = append(w.conditions, condition)
}

// in appends "column IN (...)" for the provided values.
func (w *whereBuilder) in(column string, values []string) {
	if len(values) == 0 {
		return
	}
	marks := make([]string, len(values))
	for i, v := range values {
		w.args = append(w.args, v)
		marks[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.conditions = append(w.conditions, fmt.Sprintf("%s IN (%s)", column, strings.Join(marks, ",")))
}

// search appends a case-insensitive LIKE across the columns.
func (w *whereBuilder) search(term string, columns ...string) {
	if term == "" {
		return
	}
	w.args = append(w.args, "%"+strings.ToLower(term)+"%")
	idx := len(w.args)
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("LOWER(%s) LIKE $%d", c, idx)
	}
	w.conditions = append(w.conditions, "("+strings.Join(parts, " OR ")+")")
}

func (w *whereBuilder) clause() string {
	if len(w.conditions) == 0 {
		return " WHERE 1=1"
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// orderAndPage renders ORDER BY and LIMIT for a page request restricted to allowed sort columns.
func orderAndPage(page models.PageRequest, allowed map[string]string, fallback string) string {
	p := page.Normalize()
	column, ok := allowed[p.SortBy]
	if !ok {
		column = fallback
	}
	return fmt.Sprintf(" ORDER BY %s %s LIMIT %d OFFSET %d", column, p.SortOrder, p.PageSize, p.Offset())
}

func stringsOf[S ~string](values []S) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// StatusUpdate describes a compare-and-swap status write. Set holds the
// status-specific columns stamped alongside the transition.
type StatusUpdate struct {
	ID              string
	From            string
	To              string
	ExpectedVersion *int
	Set             map[string]interface{}
	At              time.Time
}

// updateStatus writes a transition guarded by the prior status and optional version.
// A lost race surfaces as sql.ErrNoRows.
func updateStatus(ctx context.Context, exec sqlx.ExtContext, table string, u StatusUpdate) error {
	if u.At.IsZero() {
		u.At = time.Now().UTC()
	}
	args := map[string]interface{}{
		"id":          u.ID,
		"from_status": u.From,
		"status":      u.To,
		"updated_at":  u.At,
	}
	sets := []string{"status = :status", "version = version + 1", "updated_at = :updated_at"}

	columns := make([]string, 0, len(u.Set))
	for column := range u.Set {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	for _, column := range columns {
		sets = append(sets, fmt.Sprintf("%s = :%s", column, column))
		args[column] = u.Set[column]
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id AND status = :from_status", table, strings.Join(sets, ", "))
	if u.ExpectedVersion != nil {
		query += " AND version = :version"
		args["version"] = *u.ExpectedVersion
	}

	result, err := sqlx.NamedExecContext(ctx, exec, query, args)
	if err != nil {
		return fmt.Errorf("update %s status: %w", table, err)
	}
	return requireAffected(result, table)
}

func requireAffected(result sql.Result, table string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s rows affected: %w", table, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
