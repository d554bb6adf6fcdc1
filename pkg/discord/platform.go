package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// DefaultMuteDeny is what the mute role is denied on every channel.
const DefaultMuteDeny = discordgo.PermissionSendMessages |
	discordgo.PermissionVoiceSpeak |
	discordgo.PermissionAddReactions

// PlatformOptions configures the adapter.
type PlatformOptions struct {
	MuteDeny int64
}

// Platform implements moderation.Platform on a discordgo session.
type Platform struct {
	session *discordgo.Session
	opts    PlatformOptions
	// serializes role creation so concurrent mutes create one role
	roleMu sync.Mutex
}

var _ moderation.Platform = (*Platform)(nil)

// NewPlatform wraps session.
func NewPlatform(session *discordgo.Session, opts PlatformOptions) *Platform {
	if opts.MuteDeny == 0 {
		opts.MuteDeny = DefaultMuteDeny
	}
	return &Platform{session: session, opts: opts}
}

// unknownCodes are answers meaning the target does not exist (anymore).
var unknownCodes = map[int]bool{
	discordgo.ErrCodeUnknownMember:  true,
	discordgo.ErrCodeUnknownUser:    true,
	discordgo.ErrCodeUnknownBan:     true,
	discordgo.ErrCodeUnknownRole:    true,
	discordgo.ErrCodeUnknownChannel: true,
}

// mapError turns "unknown member/user/ban/role" answers into
// moderation.ErrTargetNotFound and leaves every other error untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil && unknownCodes[restErr.Message.Code] {
			return fmt.Errorf("%w: %s", moderation.ErrTargetNotFound, restErr.Message.Message)
		}
		if restErr.Message == nil && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return moderation.ErrTargetNotFound
		}
	}
	return err
}

func reasonOpts(ctx context.Context, reason string) []discordgo.RequestOption {
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if reason != "" {
		opts = append(opts, discordgo.WithAuditLogReason(reason))
	}
	return opts
}

func (p *Platform) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := p.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return mapError(err)
}

func (p *Platform) SendDirectMessage(ctx context.Context, userID, content string) error {
	ch, err := p.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return mapError(err)
	}
	_, err = p.session.ChannelMessageSend(ch.ID, content, discordgo.WithContext(ctx))
	return mapError(err)
}

func (p *Platform) FindRole(ctx context.Context, guildID, name string) (string, bool, error) {
	roles, err := p.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", false, mapError(err)
	}
	for _, r := range roles {
		if r.Name == name {
			return r.ID, true, nil
		}
	}
	return "", false, nil
}

// EnsureRole returns the role named name, creating it when absent. A created
// role is denied MuteDeny on every channel; per-channel failures are logged only.
func (p *Platform) EnsureRole(ctx context.Context, guildID, name string) (string, error) {
	p.roleMu.Lock()
	defer p.roleMu.Unlock()

	if id, found, err := p.FindRole(ctx, guildID, name); err != nil || found {
		return id, err
	}

	var none int64
	role, err := p.session.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        name,
		Permissions: &none,
	}, reasonOpts(ctx, "Rol de silencio para moderación")...)
	if err != nil {
		return "", mapError(err)
	}
	logger.Info(fmt.Sprintf("Rol '%s' creado en %s", name, guildID), "Platform")

	channels, err := p.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudieron listar canales de %s: %v", guildID, err), "Platform")
		return role.ID, nil
	}
	for _, ch := range channels {
		err := p.session.ChannelPermissionSet(ch.ID, role.ID, discordgo.PermissionOverwriteTypeRole, 0, p.opts.MuteDeny, discordgo.WithContext(ctx))
		if err != nil {
			logger.Debug(fmt.Sprintf("No se pudo configurar el canal %s: %v", ch.Name, err), "Platform")
		}
	}
	return role.ID, nil
}

func (p *Platform) member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if p.session.State != nil {
		if m, err := p.session.State.Member(guildID, userID); err == nil {
			return m, nil
		}
	}
	m, err := p.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	return m, mapError(err)
}

func (p *Platform) HasRole(ctx context.Context, guildID, userID, roleID string) (bool, error) {
	m, err := p.member(ctx, guildID, userID)
	if err != nil {
		return false, err
	}
	for _, r := range m.Roles {
		if r == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (p *Platform) GrantRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return mapError(p.session.GuildMemberRoleAdd(guildID, userID, roleID, reasonOpts(ctx, reason)...))
}

func (p *Platform) RevokeRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return mapError(p.session.GuildMemberRoleRemove(guildID, userID, roleID, reasonOpts(ctx, reason)...))
}

func (p *Platform) BanMember(ctx context.Context, guildID, userID, reason string) error {
	return mapError(p.session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx)))
}

func (p *Platform) UnbanUser(ctx context.Context, guildID, userID, reason string) error {
	return mapError(p.session.GuildBanDelete(guildID, userID, reasonOpts(ctx, reason)...))
}

func (p *Platform) KickMember(ctx context.Context, guildID, userID, reason string) error {
	return mapError(p.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx)))
}

// ResolveChannel finds a channel of guildID by ID, then by name ("#logs" or "logs").
func (p *Platform) ResolveChannel(ctx context.Context, guildID, idOrName string) (string, bool, error) {
	ref := strings.TrimPrefix(strings.TrimSpace(idOrName), "#")
	if ref == "" {
		return "", false, nil
	}

	channels, err := p.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", false, mapError(err)
	}
	for _, ch := range channels {
		if ch.ID == ref {
			return ch.ID, true, nil
		}
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && strings.EqualFold(ch.Name, ref) {
			return ch.ID, true, nil
		}
	}
	return "", false, nil
}

func (p *Platform) GuildName(ctx context.Context, guildID string) (string, error) {
	if p.session.State != nil {
		if g, err := p.session.State.Guild(guildID); err == nil && g.Name != "" {
			return g.Name, nil
		}
	}
	g, err := p.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError(err)
	}
	return g.Name, nil
}

func (p *Platform) UserName(ctx context.Context, userID string) (string, error) {
	u, err := p.session.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError(err)
	}
	return u.Username, nil
}
