package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/goccy/go-json"
)

// SchemaVersion is written into every envelope. Documents without a version
// field are the legacy raw maps and are read as version 0.
const SchemaVersion = 1

type envelope[T any] struct {
	Version int `json:"version"`
	Data    T   `json:"data"`
}

type probe struct {
	Version *int            `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Document is a whole-document store for a value of type T.
// Update serializes read-modify-write cycles; Read does not take the lock.
type Document[T any] struct {
	name    string
	backend Backend
	empty   func() T
	mu      sync.Mutex
}

// NewDocument binds name on backend. empty builds the value used when the
// document is missing or unreadable.
func NewDocument[T any](backend Backend, name string, empty func() T) *Document[T] {
	return &Document[T]{name: name, backend: backend, empty: empty}
}

// Name returns the document name.
func (d *Document[T]) Name() string {
	return d.name
}

// Read returns the current value. A missing or corrupt document reads as empty;
// a backend failure returns the empty value and an ErrStorage error.
func (d *Document[T]) Read(ctx context.Context) (T, error) {
	return d.load(ctx)
}

// Update applies fn to the current value and writes the result. Nothing is
// written when the load fails or fn returns an error.
func (d *Document[T]) Update(ctx context.Context, fn func(*T) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, err := d.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		return err
	}
	return d.save(ctx, v)
}

// Write replaces the document.
func (d *Document[T]) Write(ctx context.Context, v T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(ctx, v)
}

// Ensure creates an empty document when none exists yet.
func (d *Document[T]) Ensure(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.backend.Load(ctx, d.name)
	if errors.Is(err, ErrNotFound) {
		logger.Info(fmt.Sprintf("Creando documento vacío '%s'", d.name), "Storage")
		return d.save(ctx, d.empty())
	}
	if err != nil {
		return fmt.Errorf("%w: load %s: %v", ErrStorage, d.name, err)
	}
	return nil
}

func (d *Document[T]) load(ctx context.Context) (T, error) {
	raw, err := d.backend.Load(ctx, d.name)
	if errors.Is(err, ErrNotFound) {
		return d.empty(), nil
	}
	if err != nil {
		return d.empty(), fmt.Errorf("%w: load %s: %v", ErrStorage, d.name, err)
	}

	v, err := d.decode(raw)
	if errors.Is(err, ErrStorage) {
		return d.empty(), err
	}
	if err != nil {
		logger.Warn(fmt.Sprintf("Documento '%s' corrupto, se usará uno vacío: %v", d.name, err), "Storage")
		return d.empty(), nil
	}
	return v, nil
}

func (d *Document[T]) decode(raw []byte) (T, error) {
	v := d.empty()
	if len(bytes.TrimSpace(raw)) == 0 {
		return v, nil
	}

	var p probe
	if err := json.Unmarshal(raw, &p); err != nil {
		return v, err
	}

	payload := raw
	if p.Version != nil {
		if *p.Version > SchemaVersion {
			// Refuse to read (and later overwrite) a document from a newer build.
			return v, fmt.Errorf("%w: %s has schema version %d, this build reads up to %d", ErrStorage, d.name, *p.Version, SchemaVersion)
		}
		payload = p.Data
	}
	if len(payload) == 0 || bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return v, nil
	}

	if err := json.Unmarshal(payload, &v); err != nil {
		return d.empty(), err
	}
	return v, nil
}

func (d *Document[T]) save(ctx context.Context, v T) error {
	data, err := json.MarshalIndent(envelope[T]{Version: SchemaVersion, Data: v}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorage, d.name, err)
	}
	if err := d.backend.Save(ctx, d.name, data); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrStorage, d.name, err)
	}
	return nil
}
