// Package web serves the read-only moderation API, the live audit feed and
// the prometheus metrics on a gin engine.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/anticrash"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Server represents the web server
type Server struct {
	engine           *gin.Engine
	webhookURL       string
	webhookClient    *http.Client
	allowedHostRegex *regexp.Regexp
	limiters         *ipLimiters
	httpServer       *http.Server
	mu               sync.Mutex
}

var (
	server *Server
)

// Init initializes the global web server
func Init(webhookURL, allowedHosts string) (*Server, error) {
	s, err := NewServer(webhookURL, allowedHosts)
	if err != nil {
		return nil, err
	}
	server = s
	return server, nil
}

// Get returns the global web server
func Get() *Server {
	return server
}

// DefaultAllowedHosts only admits loopback Host headers.
const DefaultAllowedHosts = `^(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`

// NewServer creates a new web server. allowedHosts is a regular expression
// matched against the Host header; other hosts get 403. Empty means loopback only.
func NewServer(webhookURL, allowedHosts string) (*Server, error) {
	if allowedHosts == "" {
		allowedHosts = DefaultAllowedHosts
	}
	hostRegex, err := regexp.Compile(allowedHosts)
	if err != nil {
		return nil, fmt.Errorf("invalid WEB_ALLOWED_HOSTS: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:           engine,
		webhookURL:       webhookURL,
		webhookClient:    &http.Client{Timeout: 5 * time.Second},
		allowedHostRegex: hostRegex,
		limiters:         newIPLimiters(requestsPerMinute),
	}

	// Apply middlewares
	s.engine.Use(s.hostFilterMiddleware())
	s.engine.Use(s.rateLimitMiddleware())

	// Set up error handlers
	s.setupErrorHandlers()

	return s, nil
}

// Engine returns the underlying Gin engine
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start starts the web server and blocks until it stops
func (s *Server) Start(port string) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	logger.Info(fmt.Sprintf("🚀 Servidor escuchando en http://localhost:%s", port), "WebServer")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(port string) {
	anticrash.Go(func() {
		if err := s.Start(port); err != nil {
			logger.Error(fmt.Sprintf("Error starting web server: %v", err), "WebServer")
		}
	})
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Router helper methods

// GET registers a GET route
func (s *Server) GET(path string, handlers ...gin.HandlerFunc) {
	s.engine.GET(path, handlers...)
}

// Group creates a new router group
func (s *Server) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return s.engine.Group(path, handlers...)
}
