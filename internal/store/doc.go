// Package store defines the persistence contracts used by the services: the
// DBTX abstraction over *sql.DB and *sql.Tx, transaction management, the
// identity and refresh token stores, and the error values every store
// implementation maps its driver errors onto.
package store
