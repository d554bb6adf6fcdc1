// Package permissions decides whether a member's permission bits grant a capability.
package permissions

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// ErrNotAuthorized is returned when the caller lacks the required capability.
var ErrNotAuthorized = errors.New("not authorized")

// Capability is what a command requires from its caller.
type Capability int

const (
	// None lets anyone run the command.
	None Capability = iota
	// Moderate is granted by kick, ban, manage server or manage messages.
	Moderate
	// Administer is granted only by administrator.
	Administer
)

func (c Capability) String() string {
	switch c {
	case Moderate:
		return "moderate"
	case Administer:
		return "administer"
	default:
		return "none"
	}
}

const moderatorBits = discordgo.PermissionKickMembers |
	discordgo.PermissionBanMembers |
	discordgo.PermissionManageGuild |
	discordgo.PermissionManageMessages

// Allowed reports whether perms grants c. Administrator grants everything.
func Allowed(perms int64, c Capability) bool {
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	switch c {
	case None:
		return true
	case Moderate:
		return perms&moderatorBits != 0
	default:
		return false
	}
}

// Check is Allowed as an error.
func Check(perms int64, c Capability) error {
	if !Allowed(perms, c) {
		return ErrNotAuthorized
	}
	return nil
}

// DefaultMemberPermissions is the permission set a command advertises to
// Discord so the client hides it from members who cannot use it.
func DefaultMemberPermissions(c Capability) *int64 {
	var bits int64
	switch c {
	case Moderate:
		bits = moderatorBits
	case Administer:
		bits = discordgo.PermissionAdministrator
	default:
		return nil
	}
	return &bits
}
