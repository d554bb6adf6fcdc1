package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyModBot/pkg/audit"
	"github.com/PancyStudios/PancyModBot/pkg/duration"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/models"
)

// MuteResult describes an applied timed mute.
type MuteResult struct {
	Seconds int64
	Action  models.DeferredAction
}

// Mute grants the mute role for durationText and schedules its removal.
// A new mute replaces the pending unmute of an earlier one.
func (s *Service) Mute(ctx context.Context, req Request, durationText string) (MuteResult, error) {
	seconds, ok := duration.Parse(durationText)
	if !ok || seconds <= 0 {
		return MuteResult{}, s.fail("mute", ErrInvalidDuration)
	}
	reason := req.reason()

	roleID, err := s.muteRole(ctx, req.GuildID)
	if err != nil {
		return MuteResult{}, s.fail("mute", err)
	}

	pctx, cancel := s.platformCtx(ctx)
	err = s.platform.GrantRole(pctx, req.GuildID, req.Target.ID, roleID,
		fmt.Sprintf("Mute por %s. Razón: %s", duration.Format(seconds), reason))
	cancel()
	if err != nil {
		return MuteResult{}, s.fail("mute", platformFailure("grant mute role", err))
	}

	s.supersede(ctx, req.GuildID, req.Target.ID, models.ActionUnmute)
	action, err := s.schedule(ctx, req, models.ActionUnmute, seconds)
	if err != nil {
		s.rollbackMute(ctx, req, roleID)
		return MuteResult{}, s.fail("mute", err)
	}

	s.dm(ctx, req.Target.ID, s.appendAppeal(fmt.Sprintf("🔇 Fuiste silenciado en **%s** durante %s. Razón: %s.",
		s.guildName(ctx, req.GuildID), duration.Format(seconds), reason)))

	r := s.newRecord(req, audit.ActionMute)
	r.Reason = reason
	s.record(ctx, r.With("Time", fmt.Sprintf("%ds", seconds)))

	return MuteResult{Seconds: seconds, Action: action}, nil
}

func (s *Service) rollbackMute(ctx context.Context, req Request, roleID string) {
	pctx, cancel := s.platformCtx(ctx)
	defer cancel()
	if err := s.platform.RevokeRole(pctx, req.GuildID, req.Target.ID, roleID, "No se pudo programar el desmuteo"); err != nil {
		logger.Error(fmt.Sprintf("No se pudo revertir el mute de %s: %v", req.Target.ID, err), "Moderation")
	}
}

// Unmute removes the mute role and cancels the pending automatic unmute.
func (s *Service) Unmute(ctx context.Context, req Request) error {
	pctx, cancel := s.platformCtx(ctx)
	roleID, found, err := s.platform.FindRole(pctx, req.GuildID, s.opts.MuteRoleName)
	cancel()
	if err != nil {
		return s.fail("unmute", platformFailure("find mute role", err))
	}
	if !found {
		return s.fail("unmute", ErrNotMuted)
	}

	pctx, cancel = s.platformCtx(ctx)
	muted, err := s.platform.HasRole(pctx, req.GuildID, req.Target.ID, roleID)
	cancel()
	if err != nil {
		return s.fail("unmute", platformFailure("check mute role", err))
	}
	if !muted {
		return s.fail("unmute", ErrNotMuted)
	}

	pctx, cancel = s.platformCtx(ctx)
	err = s.platform.RevokeRole(pctx, req.GuildID, req.Target.ID, roleID, "Unmute por comando")
	cancel()
	if err != nil {
		return s.fail("unmute", platformFailure("revoke mute role", err))
	}

	s.supersede(ctx, req.GuildID, req.Target.ID, models.ActionUnmute)
	s.record(ctx, s.newRecord(req, audit.ActionUnmute))
	return nil
}

// BanResult describes an applied ban.
type BanResult struct {
	Seconds   int64
	Permanent bool
	// Action is the scheduled unban of a temporary ban.
	Action *models.DeferredAction
}

// Ban bans the target. An empty durationText uses the default temporary
// duration; a permanent token bans without expiry.
func (s *Service) Ban(ctx context.Context, req Request, durationText string) (BanResult, error) {
	var res BanResult
	switch text := strings.TrimSpace(durationText); {
	case text == "":
		res.Seconds = int64(s.opts.DefaultBanDuration.Seconds())
	case duration.IsPermanent(text):
		res.Permanent = true
	default:
		seconds, ok := duration.Parse(text)
		if !ok || seconds <= 0 {
			return BanResult{}, s.fail("ban", ErrInvalidDuration)
		}
		res.Seconds = seconds
	}
	reason := req.reason()

	when := "de forma permanente"
	if !res.Permanent {
		when = "durante " + duration.Format(res.Seconds)
	}
	// the DM has to go out before the ban closes the shared guild
	s.dm(ctx, req.Target.ID, s.appendAppeal(fmt.Sprintf("⛔ Fuiste baneado de **%s** %s. Razón: %s.",
		s.guildName(ctx, req.GuildID), when, reason)))

	pctx, cancel := s.platformCtx(ctx)
	err := s.platform.BanMember(pctx, req.GuildID, req.Target.ID, reason)
	cancel()
	if err != nil {
		return BanResult{}, s.fail("ban", platformFailure("ban", err))
	}

	s.supersede(ctx, req.GuildID, req.Target.ID, models.ActionUnban)
	if !res.Permanent {
		action, err := s.schedule(ctx, req, models.ActionUnban, res.Seconds)
		if err != nil {
			pctx, cancel := s.platformCtx(ctx)
			if uerr := s.platform.UnbanUser(pctx, req.GuildID, req.Target.ID, "No se pudo programar el desbaneo"); uerr != nil {
				logger.Error(fmt.Sprintf("No se pudo revertir el baneo de %s: %v", req.Target.ID, uerr), "Moderation")
			}
			cancel()
			return BanResult{}, s.fail("ban", err)
		}
		res.Action = &action
	}

	r := s.newRecord(req, audit.ActionBan)
	r.Reason = reason
	if res.Permanent {
		r = r.With("Time", "permanent")
	} else {
		r = r.With("Time", fmt.Sprintf("%ds", res.Seconds))
	}
	s.record(ctx, r)
	return res, nil
}

func isSnowflake(id string) bool {
	if id == "" || len(id) > 20 {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Unban lifts a ban by user ID and cancels the pending automatic unban.
// The returned Member carries the resolved user name.
func (s *Service) Unban(ctx context.Context, req Request) (Member, error) {
	userID := strings.TrimSpace(req.Target.ID)
	if !isSnowflake(userID) {
		return Member{}, s.fail("unban", ErrInvalidUserID)
	}
	req.Target.ID = userID

	pctx, cancel := s.platformCtx(ctx)
	name, err := s.platform.UserName(pctx, userID)
	cancel()
	if errors.Is(err, ErrTargetNotFound) {
		return Member{}, s.fail("unban", ErrInvalidUserID)
	}
	if err == nil && req.Target.Name == "" {
		req.Target.Name = name
	}

	pctx, cancel = s.platformCtx(ctx)
	err = s.platform.UnbanUser(pctx, req.GuildID, userID, req.reason())
	cancel()
	if errors.Is(err, ErrTargetNotFound) {
		return Member{}, s.fail("unban", ErrNotBanned)
	}
	if err != nil {
		return Member{}, s.fail("unban", platformFailure("unban", err))
	}

	s.supersede(ctx, req.GuildID, userID, models.ActionUnban)
	s.record(ctx, s.newRecord(req, audit.ActionUnban))
	return req.Target, nil
}

// Kick removes the target from the guild.
func (s *Service) Kick(ctx context.Context, req Request) error {
	reason := req.reason()

	pctx, cancel := s.platformCtx(ctx)
	err := s.platform.KickMember(pctx, req.GuildID, req.Target.ID, reason)
	cancel()
	if err != nil {
		return s.fail("kick", platformFailure("kick", err))
	}

	r := s.newRecord(req, audit.ActionKick)
	r.Reason = reason
	s.record(ctx, r)
	return nil
}

// Say posts content as the bot in channelID, or in the request channel when empty.
func (s *Service) Say(ctx context.Context, req Request, channelID, content string) error {
	if strings.TrimSpace(content) == "" {
		return s.fail("say", ErrEmptyMessage)
	}
	if channelID == "" {
		channelID = req.ChannelID
	}

	pctx, cancel := s.platformCtx(ctx)
	err := s.platform.SendMessage(pctx, channelID, content)
	cancel()
	if err != nil {
		return s.fail("say", platformFailure("send message", err))
	}

	r := s.newRecord(req, audit.ActionSay)
	s.record(ctx, r.With("Channel", channelID).With("Content", content))
	return nil
}
