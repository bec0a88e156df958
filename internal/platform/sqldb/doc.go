// Package sqldb implements the relational store used by the repositories and
// the identity and refresh token stores. One code path serves Postgres (pgx),
// SQLite (go-sqlite3) and MySQL (go-sql-driver); the Dialect value carries
// the differences. Schema changes ship as embedded goose migrations, one
// directory per dialect.
package sqldb
