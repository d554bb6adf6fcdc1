package models

import "time"

// ActionKind is the reversal a deferred action performs.
type ActionKind string

const (
	ActionUnmute ActionKind = "unmute"
	ActionUnban  ActionKind = "unban"
)

// ActionStatus is the lifecycle state of a deferred action.
// Pending -> Fired or Pending -> Cancelled; terminal states never change.
type ActionStatus string

const (
	StatusPending   ActionStatus = "pending"
	StatusFired     ActionStatus = "fired"
	StatusCancelled ActionStatus = "cancelled"
)

// DeferredAction is a scheduled unmute/unban.
type DeferredAction struct {
	ID        string       `bson:"id" json:"id"`
	GuildID   string       `bson:"guildId" json:"guildId"`
	TargetID  string       `bson:"targetId" json:"targetId"`
	ChannelID string       `bson:"channelId,omitempty" json:"channelId,omitempty"`
	Kind      ActionKind   `bson:"kind" json:"kind"`
	DueAt     time.Time    `bson:"dueAt" json:"dueAt"`
	CreatedAt time.Time    `bson:"createdAt" json:"createdAt"`
	Status    ActionStatus `bson:"status" json:"status"`
	ClosedAt  *time.Time   `bson:"closedAt,omitempty" json:"closedAt,omitempty"`
	Error     string       `bson:"error,omitempty" json:"error,omitempty"`
}

// Terminal reports whether the action can no longer fire.
func (a DeferredAction) Terminal() bool {
	return a.Status == StatusFired || a.Status == StatusCancelled
}

// ActionsData maps action ID -> action.
type ActionsData map[string]DeferredAction
