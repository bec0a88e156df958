package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "github.com/mattn/go-sqlite3"    // sqlite3 driver

	"github.com/phrazzld/hotel-listing-api/internal/config"
)

// SQLite DSN parameters for production hardening.
const (
	sqliteBusyTimeout = "5000" // 5 seconds
	sqliteSynchronous = "NORMAL"
	sqliteJournalMode = "WAL"
)

const pingTimeout = 5 * time.Second

// Open opens and pings a connection pool for cfg.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	dsn, err := buildDSN(dialect, cfg.URL)
	if err != nil {
		return nil, Dialect{}, err
	}

	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("open %s: %w", dialect.Name, err)
	}

	configurePool(db, dialect, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, Dialect{}, fmt.Errorf("ping %s: %w", dialect.Name, MapError(err))
	}

	return db, dialect, nil
}

func configurePool(db *sql.DB, dialect Dialect, cfg config.DatabaseConfig) {
	if dialect == SQLite {
		// Single writer; reads queue behind it instead of failing with SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(time.Hour)
		return
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if lifetime := cfg.ConnMaxLifetime(); lifetime > 0 {
		db.SetConnMaxLifetime(lifetime)
	}
}

func buildDSN(dialect Dialect, raw string) (string, error) {
	switch dialect {
	case SQLite:
		return sqliteDSN(raw), nil
	case MySQL:
		return mysqlDSN(raw)
	default:
		return raw, nil
	}
}

// sqliteDSN constructs a SQLite DSN with hardened parameters.
func sqliteDSN(path string) string {
	path = strings.TrimPrefix(path, "sqlite://")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	params := url.Values{}
	params.Set("_journal_mode", sqliteJournalMode)
	params.Set("_busy_timeout", sqliteBusyTimeout)
	params.Set("_synchronous", sqliteSynchronous)
	params.Set("_foreign_keys", "on")
	params.Set("_txlock", "immediate")
	return path + "?" + params.Encode()
}

// mysqlDSN forces the options the stores rely on: time.Time scanning in UTC
// and matched (not changed) rows reported by UPDATE.
func mysqlDSN(raw string) (string, error) {
	mc, err := mysql.ParseDSN(strings.TrimPrefix(raw, "mysql://"))
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.ClientFoundRows = true
	if mc.Timeout == 0 {
		mc.Timeout = 5 * time.Second
	}
	return mc.FormatDSN(), nil
}
