package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/anticrash"
	"github.com/PancyStudios/PancyModBot/pkg/audit"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	feedQueueSize = 64
	writeWait     = 10 * time.Second
	pingPeriod    = 30 * time.Second
)

// feedClient is one websocket subscriber. Its queue is drained by a single writer.
type feedClient struct {
	id      string
	guildID string
	conn    *websocket.Conn
	send    chan []byte
}

// Feed streams audit records to websocket subscribers. It is an audit.Sink.
type Feed struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[string]*feedClient
}

var _ audit.Sink = (*Feed)(nil)

// NewFeed creates an empty feed. checkOrigin may be nil to accept any origin.
func NewFeed(checkOrigin func(r *http.Request) bool) *Feed {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Feed{
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096, CheckOrigin: checkOrigin},
		clients:  make(map[string]*feedClient),
	}
}

// Clients returns the number of connected subscribers.
func (f *Feed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Publish implements audit.Sink. A subscriber whose queue is full misses the record.
func (f *Feed) Publish(_ context.Context, r audit.Record) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode feed record: %w", err)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, c := range f.clients {
		if c.guildID != "" && c.guildID != r.GuildID {
			continue
		}
		select {
		case c.send <- raw:
		default:
			logger.Debug(fmt.Sprintf("Cliente %s del feed va atrasado, registro descartado", c.id), "WebServer")
		}
	}
	return nil
}

// Handle upgrades the request. ?guildId= narrows the stream to one guild.
func (f *Feed) Handle(c *gin.Context) {
	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Debug(fmt.Sprintf("upgrade websocket error: %v", err), "WebServer")
		return
	}

	client := &feedClient{
		id:      uuid.NewString(),
		guildID: c.Query("guildId"),
		conn:    conn,
		send:    make(chan []byte, feedQueueSize),
	}
	f.mu.Lock()
	f.clients[client.id] = client
	f.mu.Unlock()
	logger.Debug(fmt.Sprintf("Cliente %s conectado al feed", client.id), "WebServer")

	done := make(chan struct{})
	anticrash.Go(func() { f.writeLoop(client, done) })

	// read only to notice the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				logger.Debug(fmt.Sprintf("read err %s: %v", client.id, err), "WebServer")
			}
			break
		}
	}

	f.mu.Lock()
	delete(f.clients, client.id)
	f.mu.Unlock()
	close(done)
	conn.Close()
}

func (f *Feed) writeLoop(c *feedClient, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
