// Package audit writes the append-only moderation log and fans records out to
// live sinks (MQTT, websocket feed).
package audit

import (
	"fmt"
	"strings"
	"time"
)

// Action names the moderation verb a record describes.
type Action string

const (
	ActionWarn               Action = "WARN"
	ActionUnwarn             Action = "UNWARN"
	ActionWarnings           Action = "WARNINGS"
	ActionMute               Action = "MUTE"
	ActionUnmute             Action = "UNMUTE"
	ActionBan                Action = "BAN"
	ActionUnban              Action = "UNBAN"
	ActionKick               Action = "KICK"
	ActionSay                Action = "SAY"
	ActionSettings           Action = "SETTINGS"
	ActionAutoMute           Action = "AUTO-MUTE"
	ActionAutoBan            Action = "AUTO-BAN"
	ActionAutoUnmute         Action = "AUTO-UNMUTE"
	ActionAutoUnban          Action = "AUTO-UNBAN"
	ActionAutoReversalFailed Action = "AUTO-REVERSAL-FAILED"
)

// Subject is a user as it appears in a record.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func (s Subject) String() string {
	if s.Name == "" {
		return s.ID
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.ID)
}

// Detail is an extra "Key: value" pair appended to the line.
type Detail struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Record is one immutable audit entry.
type Record struct {
	Time    time.Time `json:"time"`
	GuildID string    `json:"guildId"`
	Action  Action    `json:"action"`
	Actor   *Subject  `json:"actor,omitempty"`
	Target  *Subject  `json:"target,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	Details []Detail  `json:"details,omitempty"`
}

// With returns a copy of r with one more detail.
func (r Record) With(key, value string) Record {
	details := make([]Detail, len(r.Details), len(r.Details)+1)
	copy(details, r.Details)
	r.Details = append(details, Detail{Key: key, Value: value})
	return r
}

// oneLine keeps free text such as reasons or /say content from breaking a
// record across lines.
var oneLine = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// String renders the log line:
// [2006-01-02 15:04:05 UTC] WARN -> User: name (id) | By: mod | Reason: spam | Total: 2
func (r Record) String() string {
	var parts []string
	if r.Target != nil {
		parts = append(parts, "User: "+r.Target.String())
	}
	if r.Actor != nil {
		parts = append(parts, "By: "+r.Actor.String())
	}
	if r.Reason != "" {
		parts = append(parts, "Reason: "+oneLine.Replace(r.Reason))
	}
	for _, d := range r.Details {
		parts = append(parts, d.Key+": "+oneLine.Replace(d.Value))
	}

	return fmt.Sprintf("[%s] %s -> %s",
		r.Time.UTC().Format("2006-01-02 15:04:05")+" UTC",
		r.Action,
		strings.Join(parts, " | "),
	)
}
