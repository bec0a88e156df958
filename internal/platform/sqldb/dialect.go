package sqldb

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect describes the SQL differences between the supported stores.
// It satisfies query.Dialect.
type Dialect struct {
	// Name is the configured driver name: postgres, sqlite or mysql.
	Name string
	// DriverName is the database/sql driver registered for the store.
	DriverName string
	// GooseDialect is the dialect name goose expects.
	GooseDialect string
	// Returning reports whether INSERT ... RETURNING is supported.
	Returning bool

	numbered bool
}

var (
	Postgres = Dialect{Name: "postgres", DriverName: "pgx", GooseDialect: "postgres", Returning: true, numbered: true}
	SQLite   = Dialect{Name: "sqlite", DriverName: "sqlite3", GooseDialect: "sqlite3", Returning: true}
	MySQL    = Dialect{Name: "mysql", DriverName: "mysql", GooseDialect: "mysql"}
)

// DialectFor resolves a configured driver name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", name)
	}
}

// Placeholder returns the bind marker for the n-th argument (1-based).
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Rebind rewrites ? markers outside string literals into the dialect's
// placeholders, so hand-written statements can be shared across stores.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			sb.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			sb.WriteString(d.Placeholder(n))
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
