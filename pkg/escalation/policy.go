// Package escalation decides which automatic punishment a new warning count triggers.
package escalation

import "github.com/PancyStudios/PancyModBot/pkg/models"

// Kind is the punishment chosen by Decide.
type Kind int

const (
	None Kind = iota
	TimedMute
	Ban
)

func (k Kind) String() string {
	switch k {
	case TimedMute:
		return "timed-mute"
	case Ban:
		return "ban"
	default:
		return "none"
	}
}

// Decision is the outcome of Decide. Seconds is set only for TimedMute.
type Decision struct {
	Kind    Kind
	Seconds int
}

// Decide maps a freshly incremented count to a punishment.
// The mute threshold triggers only on exact equality and is checked first;
// the ban threshold triggers at or above. A threshold of 0 is disabled.
func Decide(count int, s models.EffectiveSettings) Decision {
	if s.WarnToMute > 0 && count == s.WarnToMute {
		return Decision{Kind: TimedMute, Seconds: s.AutoMuteSeconds}
	}
	if s.WarnToBan > 0 && count >= s.WarnToBan {
		return Decision{Kind: Ban}
	}
	return Decision{Kind: None}
}
