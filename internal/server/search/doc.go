// Package search implements the advanced asset search engine.
//
// A Request carries a flat list of named-field conditions joined by AND or
// OR. Compile turns each condition into a Predicate through a per-field
// builder (malformed conditions are dropped, never rejected), folds them
// with the request logic and resolves the sort and paging plan. Executor
// then adds the tenant, soft-delete and folder scope, and runs the plan
// against a DataSource: PostgreSQL in production (see SQLBuilder) or the
// in-memory MemorySource.
package search
