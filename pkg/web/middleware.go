package web

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/anticrash"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	requestsPerMinute = 100
	limiterIdleAfter  = 10 * time.Minute
)

// scrapes and probes would flood the webhook
var quietPaths = map[string]bool{
	"/metrics":    true,
	"/api/health": true,
}

// hostFilterMiddleware rejects unexpected Host headers and reports requests to the webhook
func (s *Server) hostFilterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.allowedHostRegex.MatchString(c.Request.Host) {
			logger.Warn(fmt.Sprintf("[LOG] Solicitud Sospechosa: %s %s | %s", c.Request.Method, c.Request.URL.Path, c.ClientIP()), "WebServer")
			s.reportRequest(c, true)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		if !quietPaths[c.Request.URL.Path] {
			logger.Info(fmt.Sprintf("[LOG] Nueva solicitud: %s %s", c.Request.Method, c.Request.URL.Path), "WebServer")
			s.reportRequest(c, false)
		}
		c.Next()
	}
}

// reportRequest posts an embed describing the request. It never blocks the request.
func (s *Server) reportRequest(c *gin.Context, suspicious bool) {
	if s.webhookURL == "" {
		return
	}

	title := fmt.Sprintf("💫 | Nueva solicitud al servidor web de tipo %s", c.Request.Method)
	color := 0x00AE86
	if suspicious {
		title = fmt.Sprintf("💫 | Solicitud Sospechosa Rechazada: %s %s", c.Request.Method, c.Request.URL.Path)
		color = 0xFFA500
	}

	headers, _ := json.Marshal(c.Request.Header)
	query := c.Request.URL.RawQuery
	if query == "" {
		query = "{}"
	}

	payload, err := json.Marshal(map[string]interface{}{
		"embeds": []interface{}{map[string]interface{}{
			"title": title,
			"description": fmt.Sprintf(
				"> **Ruta:** `%s`\n> **IP:** `%s`\n> **Headers:** ```%s``` \n> **Query:** ```%s```",
				c.Request.URL.Path, c.ClientIP(), headers, query,
			),
			"color":     color,
			"timestamp": time.Now().Format(time.RFC3339),
		}},
	})
	if err != nil {
		return
	}

	anticrash.Go(func() {
		resp, err := s.webhookClient.Post(s.webhookURL, "application/json", bytes.NewReader(payload))
		if err != nil {
			logger.Debug(fmt.Sprintf("webhook de solicitudes: %v", err), "WebServer")
			return
		}
		resp.Body.Close()
	})
}

// ipLimiters keeps one token bucket per client IP.
type ipLimiters struct {
	mu       sync.Mutex
	perMin   int
	limiters map[string]*ipLimiter
	lastGC   time.Time
}

type ipLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newIPLimiters(perMinute int) *ipLimiters {
	return &ipLimiters{
		perMin:   perMinute,
		limiters: make(map[string]*ipLimiter),
		lastGC:   time.Now(),
	}
}

// get returns the limiter for ip, creating it on first use. Idle entries are
// dropped at most once per limiterIdleAfter.
func (l *ipLimiters) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > limiterIdleAfter {
		for key, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > limiterIdleAfter {
				delete(l.limiters, key)
			}
		}
		l.lastGC = now
	}

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{lim: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.lim
}

// rateLimitMiddleware allows requestsPerMinute per client IP with an equal burst
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiters.get(c.ClientIP(), time.Now()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Demasiadas solicitudes, por favor intente de nuevo más tarde.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// setupErrorHandlers sets up the 404 and 405 responses
func (s *Server) setupErrorHandlers() {
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "La ruta solicitada no existe.",
			"status":  404,
		})
	})

	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Method Not Allowed",
			"message": "El método HTTP no está permitido para esta ruta.",
			"status":  405,
		})
	})
}

// CheckOrigin admits websocket upgrades from pages served by an allowed host.
// Clients that send no Origin header are not browsers and pass.
func (s *Server) CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return s.allowedHostRegex.MatchString(u.Host)
}

// tokenMiddleware requires the shared API token as a bearer header. Browsers
// cannot set headers on a websocket upgrade, so the token query parameter is
// accepted too.
func tokenMiddleware(token string) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if got == "" {
			got = c.Query("token")
		}
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Token de API invalido o ausente.",
			})
			return
		}
		c.Next()
	}
}
