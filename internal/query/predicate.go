package query

import (
	"fmt"
	"strings"

	"github.com/phrazzld/hotel-listing-api/internal/domain"
)

// Predicate is a boolean expression over entity fields, expressed as data so
// that it can be rendered for any supported store.
type Predicate interface {
	render(r *renderer) error
}

type comparison struct {
	field string
	op    string
	value any
}

// Eq matches rows where field equals value.
func Eq(field string, value any) Predicate { return comparison{field, "=", value} }

// Ne matches rows where field differs from value.
func Ne(field string, value any) Predicate { return comparison{field, "<>", value} }

// Lt matches rows where field is less than value.
func Lt(field string, value any) Predicate { return comparison{field, "<", value} }

// Le matches rows where field is at most value.
func Le(field string, value any) Predicate { return comparison{field, "<=", value} }

// Gt matches rows where field is greater than value.
func Gt(field string, value any) Predicate { return comparison{field, ">", value} }

// Ge matches rows where field is at least value.
func Ge(field string, value any) Predicate { return comparison{field, ">=", value} }

// Like matches rows where field matches a SQL LIKE pattern.
func Like(field, pattern string) Predicate { return comparison{field, "LIKE", pattern} }

func (c comparison) render(r *renderer) error {
	col, err := r.column(c.field)
	if err != nil {
		return err
	}
	if c.value == nil {
		return domain.NewValidationError(c.field, "cannot be compared with null; use IsNull", nil)
	}
	r.sb.WriteString(col)
	r.sb.WriteString(" ")
	r.sb.WriteString(c.op)
	r.sb.WriteString(" ")
	r.bind(c.value)
	return nil
}

type membership struct {
	field  string
	values []any
}

// In matches rows where field equals any of values. An empty list matches nothing.
func In(field string, values ...any) Predicate { return membership{field, values} }

func (m membership) render(r *renderer) error {
	col, err := r.column(m.field)
	if err != nil {
		return err
	}
	if len(m.values) == 0 {
		r.sb.WriteString("1 = 0")
		return nil
	}
	r.sb.WriteString(col)
	r.sb.WriteString(" IN (")
	for i, v := range m.values {
		if i > 0 {
			r.sb.WriteString(", ")
		}
		r.bind(v)
	}
	r.sb.WriteString(")")
	return nil
}

type nullCheck struct {
	field string
	not   bool
}

// IsNull matches rows where field is NULL.
func IsNull(field string) Predicate { return nullCheck{field: field} }

// IsNotNull matches rows where field is not NULL.
func IsNotNull(field string) Predicate { return nullCheck{field: field, not: true} }

func (n nullCheck) render(r *renderer) error {
	col, err := r.column(n.field)
	if err != nil {
		return err
	}
	r.sb.WriteString(col)
	if n.not {
		r.sb.WriteString(" IS NOT NULL")
	} else {
		r.sb.WriteString(" IS NULL")
	}
	return nil
}

type logical struct {
	op    string
	preds []Predicate
}

// And combines predicates conjunctively. nil entries are ignored; an empty
// conjunction matches everything.
func And(preds ...Predicate) Predicate { return logical{"AND", preds} }

// Or combines predicates disjunctively. nil entries are ignored; an empty
// disjunction matches nothing.
func Or(preds ...Predicate) Predicate { return logical{"OR", preds} }

func (l logical) render(r *renderer) error {
	parts := make([]Predicate, 0, len(l.preds))
	for _, p := range l.preds {
		if p != nil {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		if l.op == "AND" {
			r.sb.WriteString("1 = 1")
		} else {
			r.sb.WriteString("1 = 0")
		}
		return nil
	}
	r.sb.WriteString("(")
	for i, p := range parts {
		if i > 0 {
			fmt.Fprintf(&r.sb, " %s ", l.op)
		}
		if err := p.render(r); err != nil {
			return err
		}
	}
	r.sb.WriteString(")")
	return nil
}

type negation struct {
	pred Predicate
}

// Not negates a predicate.
func Not(p Predicate) Predicate { return negation{p} }

func (n negation) render(r *renderer) error {
	if n.pred == nil {
		return domain.NewValidationError("", "negation of an empty predicate", nil)
	}
	r.sb.WriteString("NOT (")
	if err := n.pred.render(r); err != nil {
		return err
	}
	r.sb.WriteString(")")
	return nil
}

// renderer accumulates SQL text and bound arguments for one predicate tree.
type renderer struct {
	schema  *Schema
	dialect Dialect
	sb      strings.Builder
	args    []any
}

func (r *renderer) column(field string) (string, error) {
	col, ok := r.schema.Column(field)
	if !ok {
		return "", domain.NewValidationError(field, fmt.Sprintf("is not a field of %s", r.schema.Table), nil)
	}
	return col, nil
}

func (r *renderer) bind(v any) {
	r.args = append(r.args, v)
	r.sb.WriteString(r.dialect.Placeholder(len(r.args)))
}
