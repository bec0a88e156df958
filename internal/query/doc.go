// Package query translates semantic query options (a predicate, an ordering
// and a set of relations to include) into store-executable plans.
//
// Predicates are plain values built with Eq, In, And, Or and friends, so the
// same options can be rendered for Postgres, SQLite or MySQL. Every field
// reference is checked against the entity Schema when the plan is built.
package query
