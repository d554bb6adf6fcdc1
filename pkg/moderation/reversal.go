package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/audit"
	"github.com/PancyStudios/PancyModBot/pkg/duration"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/models"
)

// Reverse performs a due unmute or unban. A target that is already back in
// the unpunished state counts as success, so a re-fire after a crash is harmless.
func (s *Service) Reverse(ctx context.Context, a models.DeferredAction) error {
	switch a.Kind {
	case models.ActionUnmute:
		roleID, found, err := s.platform.FindRole(ctx, a.GuildID, s.opts.MuteRoleName)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		err = s.platform.RevokeRole(ctx, a.GuildID, a.TargetID, roleID, "Desmuteo automático por tiempo")
		if errors.Is(err, ErrTargetNotFound) {
			return nil
		}
		return err

	case models.ActionUnban:
		err := s.platform.UnbanUser(ctx, a.GuildID, a.TargetID, "Desbaneo automático por tiempo")
		if errors.Is(err, ErrTargetNotFound) {
			return nil
		}
		return err

	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

// Notify audits a fired action and tells the origin channel about it.
func (s *Service) Notify(ctx context.Context, a models.DeferredAction, err error) {
	req := Request{GuildID: a.GuildID, ChannelID: a.ChannelID, Target: Member{ID: a.TargetID}}
	after := duration.Format(int64(a.DueAt.Sub(a.CreatedAt).Seconds()))

	if err != nil {
		r := s.newRecord(req, audit.ActionAutoReversalFailed)
		s.record(ctx, r.With("Kind", string(a.Kind)).With("Error", err.Error()))
		return
	}

	var text string
	r := s.newRecord(req, audit.ActionAutoUnmute)
	switch a.Kind {
	case models.ActionUnmute:
		text = fmt.Sprintf("✅ %s fue desilenciado automáticamente.", req.Target.Mention())
	case models.ActionUnban:
		r.Action = audit.ActionAutoUnban
		text = fmt.Sprintf("✅ El usuario %s fue desbaneado automáticamente al cumplirse su sanción.", req.Target.Mention())
	}
	s.record(ctx, r.With("After", after))

	if a.ChannelID == "" {
		return
	}
	pctx, cancel := s.platformCtx(ctx)
	defer cancel()
	if err := s.platform.SendMessage(pctx, a.ChannelID, text); err != nil {
		logger.Debug(fmt.Sprintf("No se pudo avisar en el canal %s: %v", a.ChannelID, err), "Moderation")
	}
}

// ReapplyMute puts the mute role back on a member who rejoined while a mute
// was still pending. It reports whether the role was applied.
func (s *Service) ReapplyMute(ctx context.Context, guildID, memberID string) (bool, error) {
	pending, err := s.scheduler.FindPending(ctx, guildID, memberID, models.ActionUnmute)
	if err != nil {
		return false, err
	}
	if len(pending) == 0 {
		return false, nil
	}

	roleID, err := s.muteRole(ctx, guildID)
	if err != nil {
		return false, err
	}
	pctx, cancel := s.platformCtx(ctx)
	defer cancel()
	if err := s.platform.GrantRole(pctx, guildID, memberID, roleID, "Mute pendiente al volver a entrar"); err != nil {
		return false, platformFailure("reapply mute", err)
	}
	logger.Info(fmt.Sprintf("Mute re-aplicado a %s en %s", memberID, guildID), "Moderation")
	return true, nil
}

// CancelPendingUnban drops the automatic unban of a user whose ban was lifted
// outside the bot.
func (s *Service) CancelPendingUnban(ctx context.Context, guildID, userID string) (int, error) {
	return s.scheduler.CancelMatching(ctx, guildID, userID, models.ActionUnban)
}
