// Package repository provides the generic repository and unit of work over
// the catalog tables. Repositories translate query.Options into SQL through
// the query package and stage writes in the UnitOfWork change set, which
// Commit applies in one transaction.
package repository
