// Package web serves the arrivals dashboard and its JSON API.
package web

import "errors"

// ErrMissingReconciler is returned when the reconciler is not provided.
var ErrMissingReconciler = errors.New("web: reconciler is required")

// ErrMissingHistoryService is returned when the history service is not provided.
var ErrMissingHistoryService = errors.New("web: history service is required")

// ErrMissingSnapshotService is returned when the snapshot service is not provided.
var ErrMissingSnapshotService = errors.New("web: snapshot service is required")
