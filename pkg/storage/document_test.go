package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counters map[string]int

func newCounters() counters { return counters{} }

func newFileDoc(t *testing.T) (*Document[counters], *FileBackend) {
	t.Helper()
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return NewDocument(backend, "counters", newCounters), backend
}

// flakyBackend fails Load/Save on demand.
type flakyBackend struct {
	data     map[string][]byte
	failLoad bool
	failSave bool
	saves    int
}

func (f *flakyBackend) Load(_ context.Context, name string) ([]byte, error) {
	if f.failLoad {
		return nil, errors.New("disk on fire")
	}
	d, ok := f.data[name]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (f *flakyBackend) Save(_ context.Context, name string, data []byte) error {
	if f.failSave {
		return errors.New("disk full")
	}
	f.saves++
	f.data[name] = data
	return nil
}

func (f *flakyBackend) Ping(context.Context) error { return nil }

func TestMissingDocumentReadsEmpty(t *testing.T) {
	doc, _ := newFileDoc(t)

	v, err := doc.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.NotNil(t, v)
}

func TestUpdateRoundTrip(t *testing.T) {
	ctx := context.Background()
	doc, backend := newFileDoc(t)

	require.NoError(t, doc.Update(ctx, func(c *counters) error {
		(*c)["a"] = 2
		return nil
	}))

	v, err := doc.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v["a"])

	raw, err := os.ReadFile(backend.Path("counters"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version": 1`)
}

func TestLegacyUnversionedDocument(t *testing.T) {
	ctx := context.Background()
	doc, backend := newFileDoc(t)
	require.NoError(t, os.WriteFile(backend.Path("counters"), []byte(`{"a": 7, "b": 1}`), 0644))

	v, err := doc.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, counters{"a": 7, "b": 1}, v)
}

func TestCorruptDocumentDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	doc, backend := newFileDoc(t)
	require.NoError(t, os.WriteFile(backend.Path("counters"), []byte(`{"a": 7`), 0644))

	v, err := doc.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, v)

	// the next update starts over from an empty value
	require.NoError(t, doc.Update(ctx, func(c *counters) error {
		(*c)["a"]++
		return nil
	}))
	v, _ = doc.Read(ctx)
	assert.Equal(t, 1, v["a"])
}

func TestNewerSchemaIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	doc, backend := newFileDoc(t)
	original := []byte(`{"version": 99, "data": {"a": 1}}`)
	require.NoError(t, os.WriteFile(backend.Path("counters"), original, 0644))

	err := doc.Update(ctx, func(c *counters) error { return nil })
	assert.ErrorIs(t, err, ErrStorage)

	raw, _ := os.ReadFile(backend.Path("counters"))
	assert.Equal(t, original, raw)
}

func TestLoadFailureAbortsUpdate(t *testing.T) {
	backend := &flakyBackend{data: map[string][]byte{}, failLoad: true}
	doc := NewDocument(backend, "counters", newCounters)

	called := false
	err := doc.Update(context.Background(), func(c *counters) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrStorage)
	assert.False(t, called)
	assert.Zero(t, backend.saves)
}

func TestSaveFailureSurfaces(t *testing.T) {
	backend := &flakyBackend{data: map[string][]byte{}, failSave: true}
	doc := NewDocument(backend, "counters", newCounters)

	err := doc.Update(context.Background(), func(c *counters) error {
		(*c)["a"] = 1
		return nil
	})
	assert.ErrorIs(t, err, ErrStorage)
}

func TestCallbackErrorSkipsWrite(t *testing.T) {
	backend := &flakyBackend{data: map[string][]byte{}}
	doc := NewDocument(backend, "counters", newCounters)
	boom := errors.New("nope")

	err := doc.Update(context.Background(), func(c *counters) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, backend.saves)
}

func TestEnsureCreatesOnce(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{data: map[string][]byte{}}
	doc := NewDocument(backend, "counters", newCounters)

	require.NoError(t, doc.Ensure(ctx))
	require.NoError(t, doc.Ensure(ctx))
	assert.Equal(t, 1, backend.saves)
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	ctx := context.Background()
	doc, _ := newFileDoc(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, doc.Update(ctx, func(c *counters) error {
				(*c)["hits"]++
				return nil
			}))
		}()
	}
	wg.Wait()

	v, err := doc.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, v["hits"])
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	doc, backend := newFileDoc(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, doc.Write(ctx, counters{"a": i}))
	}

	matches, err := filepath.Glob(filepath.Join(backend.dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	_, backend := newFileDoc(t)

	status, online := StatusReporter{Backend: backend}.Status(ctx)
	assert.True(t, online)
	assert.Equal(t, "🟢 | En linea", status)

	require.NoError(t, os.RemoveAll(backend.dir))
	status, online = Status(ctx, backend)
	assert.False(t, online)
	assert.Equal(t, "🔴 | Desconectado", status)
}
