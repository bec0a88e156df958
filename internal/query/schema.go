package query

import "slices"

// Field binds a client-facing field name to a column.
type Field struct {
	Name   string
	Column string
}

// Schema describes the columns and relations of one entity collection.
// Only names declared here can appear in a plan; everything else is rejected.
type Schema struct {
	Table     string
	Key       string
	Columns   []string
	Relations []string

	fields map[string]string
}

// NewSchema declares an entity collection. key is the identity column and is
// always selected first; fields lists the remaining columns in select order.
func NewSchema(table, key string, fields []Field, relations ...string) *Schema {
	s := &Schema{
		Table:     table,
		Key:       key,
		Columns:   make([]string, 0, len(fields)+1),
		Relations: relations,
		fields:    make(map[string]string, 2*len(fields)+2),
	}
	s.Columns = append(s.Columns, key)
	s.fields[key] = key
	s.fields["id"] = key
	for _, f := range fields {
		s.Columns = append(s.Columns, f.Column)
		s.fields[f.Column] = f.Column
		if f.Name != "" {
			s.fields[f.Name] = f.Column
		}
	}
	return s
}

// Column resolves a field or column name.
func (s *Schema) Column(field string) (string, bool) {
	col, ok := s.fields[field]
	return col, ok
}

// HasRelation reports whether name is a declared relation.
func (s *Schema) HasRelation(name string) bool {
	return slices.Contains(s.Relations, name)
}

// DataColumns returns every column except the key, in select order.
func (s *Schema) DataColumns() []string {
	return s.Columns[1:]
}
