package tui

import "errors"

// ErrMissingReconciler is returned when the reconciler is not provided.
var ErrMissingReconciler = errors.New("tui: reconciler is required")

// ErrMissingSnapshotService is returned when the snapshot service is not provided.
var ErrMissingSnapshotService = errors.New("tui: snapshot service is required")
