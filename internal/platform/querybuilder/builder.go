// Package querybuilder renders small postgres statements with numbered
// placeholders. It covers what the repositories need and nothing more.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// argList collects bound values and hands out their $n placeholders.
type argList struct {
	values []any
}

func (a *argList) bind(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// bindExpr swaps each ? in expr for the next bound value. Surplus ? marks
// are left as they are.
func (a *argList) bindExpr(expr string, values []any) string {
	if len(values) == 0 {
		return expr
	}

	var out strings.Builder
	next := 0
	for _, r := range expr {
		if r == '?' && next < len(values) {
			out.WriteString(a.bind(values[next]))
			next++
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

type Condition interface {
	render(args *argList) string
}

type conditionFunc func(args *argList) string

func (f conditionFunc) render(args *argList) string {
	return f(args)
}

func Eq(column string, value any) Condition {
	return conditionFunc(func(args *argList) string {
		return column + " = " + args.bind(value)
	})
}

// In matches any of values. An empty set matches nothing.
func In[T any](column string, values []T) Condition {
	return conditionFunc(func(args *argList) string {
		if len(values) == 0 {
			return "1=0"
		}
		marks := make([]string, len(values))
		for i, v := range values {
			marks[i] = args.bind(v)
		}
		return column + " IN (" + strings.Join(marks, ", ") + ")"
	})
}

func IsNull(column string) Condition {
	return conditionFunc(func(*argList) string {
		return column + " IS NULL"
	})
}

// Expr is a raw predicate with ? placeholders.
func Expr(expr string, values ...any) Condition {
	return conditionFunc(func(args *argList) string {
		return args.bindExpr(expr, values)
	})
}

func renderWhere(buf *strings.Builder, conditions []Condition, args *argList) {
	for i, c := range conditions {
		if i == 0 {
			buf.WriteString(" WHERE ")
		} else {
			buf.WriteString(" AND ")
		}
		buf.WriteString(c.render(args))
	}
}

func requireName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s table is required", kind)
	}
	return nil
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if err := requireName("select", b.table); err != nil {
		return "", nil, err
	}

	var (
		buf  strings.Builder
		args argList
	)
	fmt.Fprintf(&buf, "SELECT %s FROM %s", strings.Join(b.columns, ", "), b.table)
	renderWhere(&buf, b.where, &args)
	if len(b.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}
	return buf.String(), args.values, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

// Values adds one row. Call it once per row for a multi-row insert.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends raw SQL, typically an OnConflict clause.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if err := requireName("insert", b.table); err != nil {
		return "", nil, err
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var (
		buf  strings.Builder
		args argList
	)
	fmt.Fprintf(&buf, "INSERT INTO %s (%s) VALUES ", b.table, strings.Join(b.columns, ", "))
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		marks := make([]string, len(row))
		for j, v := range row {
			marks[j] = args.bind(v)
		}
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(" + strings.Join(marks, ", ") + ")")
	}
	if b.suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(b.suffix)
	}
	return buf.String(), args.values, nil
}

type UpdateBuilder struct {
	table string
	sets  []Condition
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, Eq(column, value))
	return b
}

// SetExpr assigns a raw expression, e.g. SetExpr("updated_at", "NOW()").
func (b *UpdateBuilder) SetExpr(column, expr string, values ...any) *UpdateBuilder {
	b.sets = append(b.sets, conditionFunc(func(args *argList) string {
		return column + " = " + args.bindExpr(expr, values)
	}))
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if err := requireName("update", b.table); err != nil {
		return "", nil, err
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var (
		buf  strings.Builder
		args argList
	)
	assignments := make([]string, len(b.sets))
	for i, s := range b.sets {
		assignments[i] = s.render(&args)
	}
	fmt.Fprintf(&buf, "UPDATE %s SET %s", b.table, strings.Join(assignments, ", "))
	renderWhere(&buf, b.where, &args)
	return buf.String(), args.values, nil
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// ToSQL refuses to build an unconditional delete.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if err := requireName("delete", b.table); err != nil {
		return "", nil, err
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete conditions are required")
	}

	var (
		buf  strings.Builder
		args argList
	)
	buf.WriteString("DELETE FROM " + b.table)
	renderWhere(&buf, b.where, &args)
	return buf.String(), args.values, nil
}
