// Package storage persists whole documents (warnings, settings, deferred
// actions) behind a small Backend interface. Every document is written as a
// versioned JSON envelope and replaced atomically.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrStorage wraps any I/O failure talking to the backend.
	ErrStorage = errors.New("storage error")
	// ErrNotFound is returned by a Backend when the document has never been written.
	ErrNotFound = errors.New("document not found")
)

// Backend stores opaque document bytes by name.
type Backend interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Ping(ctx context.Context) error
}

// Status renders the backend health the way /status and the API show it.
func Status(ctx context.Context, b Backend) (string, bool) {
	if err := b.Ping(ctx); err != nil {
		return "🔴 | Desconectado", false
	}
	return "🟢 | En linea", true
}

// StatusReporter adapts a Backend to anything asking for Status.
type StatusReporter struct {
	Backend Backend
}

// Status implements the status interface of the web and MQTT layers.
func (r StatusReporter) Status(ctx context.Context) (string, bool) {
	return Status(ctx, r.Backend)
}
