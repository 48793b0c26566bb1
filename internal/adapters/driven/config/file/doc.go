// Package file provides the TOML configuration store and a watcher that
// reloads it when the file changes on disk.
//
// Nested tables are exposed as dot-notation keys, so
//
//	[store]
//	backend = "sqlite"
//
// is read and written as "store.backend".
package file
