package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/audit"
)

// ModerationTopicPrefix is where audit records are published:
// pancy/moderation/<guildId>/<action>.
const ModerationTopicPrefix = "pancy/moderation/"

// StatusTopic is answered by RegisterStatusHandler.
const StatusTopic = "moderation/status"

// Publisher is the part of MqttCommunicator the sink needs.
type Publisher interface {
	Publish(topic string, payload interface{}) error
	IsConnected() bool
}

// AuditSink forwards every audit record to the broker.
type AuditSink struct {
	pub Publisher
}

var _ audit.Sink = (*AuditSink)(nil)

// NewAuditSink creates a sink publishing through pub.
func NewAuditSink(pub Publisher) *AuditSink {
	return &AuditSink{pub: pub}
}

// Topic returns the topic a record is published on.
func Topic(r audit.Record) string {
	guild := r.GuildID
	if guild == "" {
		guild = "global"
	}
	return ModerationTopicPrefix + guild + "/" + strings.ToLower(string(r.Action))
}

type recordMessage struct {
	audit.Record
	Line string `json:"line"`
}

// Publish implements audit.Sink. Records are dropped while disconnected.
func (s *AuditSink) Publish(_ context.Context, r audit.Record) error {
	if !s.pub.IsConnected() {
		return nil
	}
	if err := s.pub.Publish(Topic(r), recordMessage{Record: r, Line: r.String()}); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", r.Action, err)
	}
	return nil
}

// Status is what the status request answers.
type Status struct {
	BotReady       bool      `json:"botReady"`
	Guilds         int       `json:"guilds"`
	PendingActions int       `json:"pendingActions"`
	Storage        string    `json:"storage"`
	StartedAt      time.Time `json:"startedAt"`
}

// StatusFunc gathers the current status.
type StatusFunc func(ctx context.Context) (Status, error)

// StatusHandler adapts fn to a RequestHandler.
func StatusHandler(fn StatusFunc) RequestHandler {
	return func(map[string]interface{}) (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return fn(ctx)
	}
}

// RegisterStatusHandler answers pancy/request/moderation/status.
func (mc *MqttCommunicator) RegisterStatusHandler(fn StatusFunc) {
	mc.On(StatusTopic, StatusHandler(fn))
}
