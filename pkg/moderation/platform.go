package moderation

import "context"

// Platform is the chat platform as the moderation service sees it.
// Implementations return ErrTargetNotFound when Discord reports an unknown
// member, user, role or ban, so reversals can treat it as already done.
type Platform interface {
	SendMessage(ctx context.Context, channelID, content string) error
	SendDirectMessage(ctx context.Context, userID, content string) error

	// EnsureRole returns the role named name, creating it when absent.
	EnsureRole(ctx context.Context, guildID, name string) (string, error)
	FindRole(ctx context.Context, guildID, name string) (string, bool, error)
	HasRole(ctx context.Context, guildID, userID, roleID string) (bool, error)
	GrantRole(ctx context.Context, guildID, userID, roleID, reason string) error
	RevokeRole(ctx context.Context, guildID, userID, roleID, reason string) error

	BanMember(ctx context.Context, guildID, userID, reason string) error
	UnbanUser(ctx context.Context, guildID, userID, reason string) error
	KickMember(ctx context.Context, guildID, userID, reason string) error

	// ResolveChannel accepts a channel ID or a channel name.
	ResolveChannel(ctx context.Context, guildID, idOrName string) (string, bool, error)
	GuildName(ctx context.Context, guildID string) (string, error)
	UserName(ctx context.Context, userID string) (string, error)
}
