// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants run a reconcile cycle and read the recorded arrivals.
package mcp

import "errors"

// ErrMissingReconciler is returned when the reconciler is not provided.
var ErrMissingReconciler = errors.New("mcp: reconciler is required")

// ErrMissingHistoryService is returned when the history service is not provided.
var ErrMissingHistoryService = errors.New("mcp: history service is required")
