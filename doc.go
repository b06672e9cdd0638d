// Package rowbind is a reflective row-mapping layer for SQL access: it
// matches result-set columns to struct properties at runtime, builds a
// reusable per-shape mapping plan, and materializes instances from rows.
//
// # Architecture
//
// The engine is split into small, composable pieces:
//
//  1. Property Catalog (pkg/mapper): introspects a target type once into an
//     ordered descriptor list, cached for the process lifetime.
//
//  2. Plan Resolver (pkg/mapper): cross-references a result set's column
//     labels against the catalog under configurable naming rules, choosing a
//     converter per column. Plans are cached per (type, prefix, column
//     signature) and shared read-only across goroutines.
//
//  3. Row Materializer (pkg/mapper): applies a cached plan to one prefetched
//     row, allocating exactly one instance and attributing every write
//     failure to the property involved.
//
//  4. Transaction Decorator (pkg/tx): wraps units of work so nested
//     transactional calls collapse into the outer transaction, with
//     isolation-level conflicts rejected before any work runs.
//
// # Quick Start
//
// Map query results into structs:
//
//	import (
//	    "github.com/rowbind/rowbind/pkg/config"
//	    "github.com/rowbind/rowbind/pkg/mapper"
//	    "github.com/rowbind/rowbind/pkg/rowsource"
//	)
//
//	type User struct {
//	    ID    int64
//	    Name  string `db:"full_name"`
//	    Email string
//	}
//
//	factory := mapper.NewFactory(config.NewMappingConfig(), nil)
//	users, err := mapper.NewTypedMapper[User](factory)
//	if err != nil { ... }
//
//	sqlRows, err := db.Query("SELECT id, full_name, email FROM users")
//	if err != nil { ... }
//	rows, err := rowsource.FetchAll(sqlRows)
//	if err != nil { ... }
//
//	mapped, err := users.MapAll(rows)
//
// Column matching is case-insensitive with camelCase↔snake_case equivalence
// by default; strictness, prefixes, and naming rules are configured through
// config.MappingConfig.
package rowbind
