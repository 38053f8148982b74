package querybuilder

import "strings"

// ConflictClause renders the ON CONFLICT tail of an insert. Its String form
// is passed as the suffix of InsertModel and InsertModels.
type ConflictClause struct {
	target    []string
	nothing   bool
	sets      []string
	where     string
	returning []string
}

func OnConflict(target ...string) *ConflictClause {
	return &ConflictClause{target: append([]string(nil), target...)}
}

func (c *ConflictClause) DoNothing() *ConflictClause {
	c.nothing = true
	return c
}

// UpdateExcluded copies each column from the rejected row.
func (c *ConflictClause) UpdateExcluded(columns ...string) *ConflictClause {
	for _, col := range columns {
		c.sets = append(c.sets, col+" = EXCLUDED."+col)
	}
	return c
}

// UpdateExpr sets column to a raw SQL expression such as "NOW()".
func (c *ConflictClause) UpdateExpr(column, expr string) *ConflictClause {
	c.sets = append(c.sets, column+" = "+expr)
	return c
}

// Where guards the update, e.g. to stop a row moving between tenants.
func (c *ConflictClause) Where(expr string) *ConflictClause {
	c.where = strings.TrimSpace(expr)
	return c
}

func (c *ConflictClause) Returning(columns ...string) *ConflictClause {
	c.returning = append(c.returning, columns...)
	return c
}

func (c *ConflictClause) String() string {
	var buf strings.Builder
	buf.WriteString("ON CONFLICT")
	if len(c.target) > 0 {
		buf.WriteString(" (")
		buf.WriteString(strings.Join(c.target, ", "))
		buf.WriteString(")")
	}

	if c.nothing || len(c.sets) == 0 {
		buf.WriteString(" DO NOTHING")
	} else {
		buf.WriteString(" DO UPDATE SET ")
		buf.WriteString(strings.Join(c.sets, ", "))
		if c.where != "" {
			buf.WriteString(" WHERE ")
			buf.WriteString(c.where)
		}
	}

	if len(c.returning) > 0 {
		buf.WriteString(" RETURNING ")
		buf.WriteString(strings.Join(c.returning, ", "))
	}
	return buf.String()
}
