package anticrash

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureCountsTotal(t *testing.T) {
	g := New(Options{})

	g.Failure("test", errors.New("boom"))
	g.Failure("test", errors.New("boom"))

	assert.Equal(t, int64(2), g.Total())
	assert.Equal(t, int32(2), g.failures.Load())
}

func TestSpikeTripsShutdownAndExit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	shutdown := make(chan struct{})
	exited := make(chan int, 1)

	g := New(Options{
		WebhookURL:    srv.URL,
		MaxFailures:   2,
		Window:        time.Hour,
		CheckInterval: 10 * time.Millisecond,
		Shutdown:      func() { close(shutdown) },
		Exit:          func(code int) { exited <- code },
	})
	g.Start()
	defer g.Stop()

	for i := 0; i < 3; i++ {
		g.Failure("test", errors.New("boom"))
	}

	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(2 * time.Second):
		t.Fatal("guard did not trip")
	}
	<-shutdown
	assert.Equal(t, int32(1), hits.Load())
}

func TestWindowResetKeepsProcessAlive(t *testing.T) {
	exited := make(chan int, 1)
	g := New(Options{
		MaxFailures:   1,
		Window:        5 * time.Millisecond,
		CheckInterval: 50 * time.Millisecond,
		Exit:          func(code int) { exited <- code },
	})
	g.Start()
	defer g.Stop()

	g.Failure("test", errors.New("boom"))
	g.Failure("test", errors.New("boom"))

	select {
	case <-exited:
		t.Fatal("failures should have been reset by the window")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestRecoverSwallowsPanic(t *testing.T) {
	guard = New(Options{})
	defer func() { guard = nil }()

	done := make(chan struct{})
	Go(func() {
		defer close(done)
		panic("kaboom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not finish")
	}

	require.Eventually(t, func() bool { return guard.Total() == 1 }, time.Second, 5*time.Millisecond)
}
