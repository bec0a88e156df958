package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phrazzld/hotel-listing-api/internal/domain"
)

// Dialect renders the store-specific parts of a plan.
type Dialect interface {
	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder(n int) string
}

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts "asc"/"desc" in any case; empty means ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return "", domain.NewValidationError("direction", "must be asc or desc", nil)
	}
}

// Order is a single sort key.
type Order struct {
	Field     string
	Direction Direction
}

// Asc orders by field ascending.
func Asc(field string) *Order { return &Order{Field: field, Direction: Ascending} }

// Desc orders by field descending.
func Desc(field string) *Order { return &Order{Field: field, Direction: Descending} }

// Options are the semantic query options of one call. The zero value selects
// every row in primary key order with no relations attached.
type Options struct {
	Where    Predicate
	OrderBy  *Order
	Includes []string
}

// Plan is an executable, validated query against one entity collection.
type Plan struct {
	schema   *Schema
	where    string
	args     []any
	orderBy  string
	includes []string
}

// Build validates opts against schema and renders a plan for dialect.
// Unknown fields, sort keys or relations fail with domain.ErrValidation so
// that malformed requests never reach the store.
func Build(schema *Schema, opts Options, dialect Dialect) (*Plan, error) {
	p := &Plan{schema: schema}

	if opts.Where != nil {
		r := &renderer{schema: schema, dialect: dialect}
		if err := opts.Where.render(r); err != nil {
			return nil, err
		}
		p.where = r.sb.String()
		p.args = r.args
	}

	order := schema.Key + " ASC"
	if opts.OrderBy != nil {
		col, ok := schema.Column(opts.OrderBy.Field)
		if !ok {
			return nil, domain.NewValidationError(opts.OrderBy.Field, fmt.Sprintf("is not a sortable field of %s", schema.Table), nil)
		}
		dir := "ASC"
		switch opts.OrderBy.Direction {
		case Ascending, "":
		case Descending:
			dir = "DESC"
		default:
			return nil, domain.NewValidationError("direction", "must be asc or desc", nil)
		}
		order = col + " " + dir
		if col != schema.Key {
			order += ", " + schema.Key + " ASC"
		}
	}
	p.orderBy = order

	seen := make(map[string]bool, len(opts.Includes))
	for _, inc := range opts.Includes {
		if !schema.HasRelation(inc) {
			return nil, domain.NewValidationError(inc, fmt.Sprintf("is not a relation of %s", schema.Table), nil)
		}
		if !seen[inc] {
			seen[inc] = true
			p.includes = append(p.includes, inc)
		}
	}

	return p, nil
}

// Includes returns the validated relation names to attach.
func (p *Plan) Includes() []string {
	return p.includes
}

// CountSQL counts rows matching the predicate. Ordering and includes do not
// affect the count and are left out.
func (p *Plan) CountSQL() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(p.schema.Table)
	p.writeWhere(&sb)
	return sb.String(), p.args
}

// SelectSQL selects the matching rows in plan order. A limit ≤ 0 selects
// every row.
func (p *Plan) SelectSQL(limit, offset int) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(p.schema.Columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(p.schema.Table)
	p.writeWhere(&sb)
	sb.WriteString(" ORDER BY ")
	sb.WriteString(p.orderBy)
	if limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(limit))
		if offset > 0 {
			sb.WriteString(" OFFSET ")
			sb.WriteString(strconv.Itoa(offset))
		}
	}
	return sb.String(), p.args
}

func (p *Plan) writeWhere(sb *strings.Builder) {
	if p.where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(p.where)
	}
}
