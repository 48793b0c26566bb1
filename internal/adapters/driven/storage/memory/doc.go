// Package memory provides in-memory implementations of the driven ports.
// Nothing survives the process. Used by tests, by the memory store backend
// and by the daemon's run log when no local database is configured.
package memory
