// Package domain defines the core business entities for arrivals.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CatalogItem: An item listed by the catalog source
//   - RecentItem: The stored and displayed projection of an item
//   - DatedBatch: The items first seen on one UTC day
//   - History: The persisted document of batches and recents
//   - Snapshot: The state handed to presentation layers
//
// The reconcile engine itself lives here as pure functions over these
// types: History.Index, NewBatch, SelectRecents and History.Merge.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
