// Package service contains the application use cases: catalog reads and
// writes over a unit of work, and account registration.
//
// Each ResourceService call opens its own repository.UnitOfWork through the
// injected UnitOfWorkFactory, so a unit of work never outlives the request
// that created it and Commit is the only atomicity boundary.
//
// Services receive their dependencies through constructor injection and
// depend on the store interfaces, never on a concrete database. Errors are
// wrapped with %w so the API layer can map domain sentinels to status codes.
package service
