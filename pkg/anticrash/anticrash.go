// Package anticrash recovers panics from command and timer goroutines, counts
// failures in a sliding window and shuts the process down when they spike.
package anticrash

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/goccy/go-json"
)

// Options tunes the guard. Zero values fall back to the defaults.
type Options struct {
	WebhookURL    string
	MaxFailures   int32
	Window        time.Duration
	CheckInterval time.Duration
	// Shutdown runs before the process exits on a failure spike.
	Shutdown func()
	// Exit is replaced in tests.
	Exit func(code int)
}

// Guard tracks recovered panics and reported failures.
type Guard struct {
	failures atomic.Int32
	total    atomic.Int64
	opts     Options
	stop     chan struct{}
	stopOnce sync.Once
	client   *http.Client
}

// Report is a failure summary sent to the error webhook.
type Report struct {
	Title   string
	Message string
}

var (
	guard     *Guard
	guardOnce sync.Once
)

// Init installs the process-wide guard.
func Init(opts Options) *Guard {
	guardOnce.Do(func() {
		guard = New(opts)
		guard.Start()
	})
	return guard
}

// Get returns the process-wide guard, or nil before Init.
func Get() *Guard {
	return guard
}

// New builds a guard without starting its monitor.
func New(opts Options) *Guard {
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 15
	}
	if opts.Window <= 0 {
		opts.Window = 5 * time.Second
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = time.Second
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}
	return &Guard{
		opts:   opts,
		stop:   make(chan struct{}),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Start launches the window reset and spike check loop.
func (g *Guard) Start() {
	go func() {
		reset := time.NewTicker(g.opts.Window)
		check := time.NewTicker(g.opts.CheckInterval)
		defer reset.Stop()
		defer check.Stop()

		for {
			select {
			case <-reset.C:
				g.failures.Store(0)
			case <-check.C:
				if g.failures.Load() > g.opts.MaxFailures {
					g.trip()
					return
				}
			case <-g.stop:
				return
			}
		}
	}()
}

// Stop halts the monitor loop.
func (g *Guard) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
}

func (g *Guard) trip() {
	start := time.Now()
	logger.Warn("Se detectó un número demasiado alto de errores", "CRITICAL")
	logger.Warn("Apagando...", "CRITICAL")

	g.Send(Report{
		Title:   "Critical Error",
		Message: "Número inusual de errores. Apagando...",
	})

	if g.opts.Shutdown != nil {
		g.opts.Shutdown()
	}

	logger.Warn(fmt.Sprintf("Finalizando proceso... Tiempo total: %v", time.Since(start)), "CRITICAL")
	g.opts.Exit(1)
}

// Failure counts one failure in the current window.
func (g *Guard) Failure(source string, err error) {
	count := g.failures.Add(1)
	g.total.Add(1)
	logger.Error(fmt.Sprintf("%s: %v (errores en ventana: %d)", source, err, count), "AntiCrash")
}

// Total returns every failure counted since start.
func (g *Guard) Total() int64 {
	return g.total.Load()
}

// HandlePanic records a recovered panic value.
func (g *Guard) HandlePanic(recovered interface{}) {
	g.Failure("panic", fmt.Errorf("%v", recovered))
	logger.Debug(string(debug.Stack()), "AntiCrash")
}

// Send posts a report embed to the error webhook when one is configured.
func (g *Guard) Send(r Report) {
	if g.opts.WebhookURL == "" {
		return
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{map[string]interface{}{
			"author":      map[string]string{"name": fmt.Sprintf("Error %s", r.Title)},
			"description": r.Message,
			"color":       0xFF0000,
			"footer":      map[string]string{"text": "PancyModBot"},
			"timestamp":   time.Now().Format(time.RFC3339),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to marshal error report: %v", err), "AntiCrash")
		return
	}

	req, err := http.NewRequest(http.MethodPost, g.opts.WebhookURL, bytes.NewReader(body))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to create webhook request: %v", err), "AntiCrash")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send error report: %v", err), "AntiCrash")
		return
	}
	defer resp.Body.Close()

	logger.Warn(fmt.Sprintf("Sent ErrorReport to Webhook, Status: %d", resp.StatusCode), "AntiCrash")
}

// Recover is deferred at the top of goroutines: defer anticrash.Recover()
func Recover() {
	if r := recover(); r != nil {
		if g := Get(); g != nil {
			g.HandlePanic(r)
			return
		}
		logger.Error(fmt.Sprintf("Panic recovered (no guard): %v", r), "AntiCrash")
	}
}

// Go runs fn in a goroutine protected by Recover.
func Go(fn func()) {
	go func() {
		defer Recover()
		fn()
	}()
}
