package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitPerIP(t *testing.T) {
	s := newTestServer(t, Deps{})

	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Host = "localhost"
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		s.Engine().ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < requestsPerMinute; i++ {
		require.Equal(t, http.StatusOK, do("192.0.2.1:1234"), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, do("192.0.2.1:1234"))
	assert.Equal(t, http.StatusOK, do("192.0.2.2:1234"))
}

func TestIPLimitersDropIdleEntries(t *testing.T) {
	l := newIPLimiters(10)
	now := time.Now()

	first := l.get("a", now)
	assert.Same(t, first, l.get("a", now.Add(time.Second)))
	l.get("b", now)

	later := now.Add(2 * limiterIdleAfter)
	l.get("c", later)
	assert.Len(t, l.limiters, 1)
	assert.NotSame(t, first, l.get("a", later))
}
