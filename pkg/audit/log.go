package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/metrics"
)

// Sink receives every record after it is durably written.
type Sink interface {
	Publish(ctx context.Context, r Record) error
}

// recentSize bounds the in-memory tail served by the HTTP API.
const recentSize = 100

// Log appends records to a text file, one line each.
type Log struct {
	mu     sync.Mutex
	file   *os.File
	sinks  []Sink
	recent []Record
}

// Open opens (or creates) the log file at path for appending.
func Open(path string, sinks ...Sink) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &Log{file: f, sinks: sinks}, nil
}

// AddSink registers another live sink.
func (l *Log) AddSink(s Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, s)
}

// Append writes r and then publishes it to every sink. Sink failures are
// logged and never returned.
func (l *Log) Append(ctx context.Context, r Record) error {
	line := r.String() + "\n"

	l.mu.Lock()
	if _, err := l.file.WriteString(line); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	l.recent = append(l.recent, r)
	if len(l.recent) > recentSize {
		l.recent = l.recent[len(l.recent)-recentSize:]
	}
	sinks := make([]Sink, len(l.sinks))
	copy(sinks, l.sinks)
	l.mu.Unlock()

	metrics.ModerationActions.WithLabelValues(string(r.Action)).Inc()

	for _, s := range sinks {
		if err := s.Publish(ctx, r); err != nil {
			logger.Warn(fmt.Sprintf("Sink de auditoría falló (%s): %v", r.Action, err), "Audit")
		}
	}
	return nil
}

// Recent returns up to n of the latest records for a guild, newest last.
// An empty guildID matches every guild.
func (l *Log) Recent(guildID string, n int) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Record
	for i := len(l.recent) - 1; i >= 0 && len(out) < n; i-- {
		if guildID == "" || l.recent[i].GuildID == guildID {
			out = append(out, l.recent[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Close closes the file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
