package backend

import "errors"

// Sentinel errors for backend package.
var (
	// ErrTransferUnsupported is returned when a canvas cannot move to a worker.
	ErrTransferUnsupported = errors.New("backend: canvas transfer unsupported")

	// ErrNotInitialized is returned when drawing before InitCanvas.
	ErrNotInitialized = errors.New("backend: canvas not initialized")

	// ErrClosed is returned when posting to a closed backend.
	ErrClosed = errors.New("backend: closed")

	// ErrInvalidSize is returned for non-positive canvas dimensions.
	ErrInvalidSize = errors.New("backend: invalid canvas size")
)
