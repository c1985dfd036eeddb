// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict (optimistic locking).
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrUnauthenticated indicates no usable credential was available before a
// backend call was attempted.
var ErrUnauthenticated = errors.New("unauthenticated: no credential available")

// ErrRequestRejected indicates the backend refused a request with a non-2xx
// status. The wrapping error carries the server-supplied detail when present.
var ErrRequestRejected = errors.New("request rejected by backend")

// ErrStreamTransport indicates a network failure while reading an event
// stream. Terminal for the current turn only.
var ErrStreamTransport = errors.New("stream transport failure")

// ErrStreamStalled indicates no event arrived within the inactivity window.
var ErrStreamStalled = errors.New("stream stalled: no events before timeout")
