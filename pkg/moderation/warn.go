package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/PancyStudios/PancyModBot/pkg/audit"
	"github.com/PancyStudios/PancyModBot/pkg/duration"
	"github.com/PancyStudios/PancyModBot/pkg/escalation"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/warnings"
)

// WarnResult describes a recorded warning and any escalation it caused.
type WarnResult struct {
	Count      int
	Escalation escalation.Decision
	// EscalationErr is set when the escalation was decided but could not be applied.
	// The warning itself is still recorded.
	EscalationErr error
	// Action is the scheduled unmute of a successful TimedMute escalation.
	Action *models.DeferredAction
}

// Warn records a warning and applies the escalation the new count triggers.
func (s *Service) Warn(ctx context.Context, req Request) (WarnResult, error) {
	reason := req.reason()

	count, err := s.ledger.Increment(ctx, req.GuildID, req.Target.ID)
	if err != nil {
		return WarnResult{}, s.fail("warn", err)
	}
	res := WarnResult{Count: count}

	s.dm(ctx, req.Target.ID, fmt.Sprintf("⚠️ Recibiste una advertencia en **%s**. Razón: %s. Total: %d",
		s.guildName(ctx, req.GuildID), reason, count))

	r := s.newRecord(req, audit.ActionWarn)
	r.Reason = reason
	s.record(ctx, r.With("Total", strconv.Itoa(count)))

	eff, err := s.settings.Get(ctx, req.GuildID)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudieron leer los ajustes de %s, usando valores por defecto: %v", req.GuildID, err), "Moderation")
	}

	res.Escalation = escalation.Decide(count, eff)
	switch res.Escalation.Kind {
	case escalation.TimedMute:
		res.Action, res.EscalationErr = s.autoMute(ctx, req, count, int64(res.Escalation.Seconds))
	case escalation.Ban:
		res.EscalationErr = s.autoBan(ctx, req, count)
	}
	if res.EscalationErr != nil {
		s.fail("escalation", res.EscalationErr)
	}
	return res, nil
}

func (s *Service) autoMute(ctx context.Context, req Request, count int, seconds int64) (*models.DeferredAction, error) {
	roleID, err := s.muteRole(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	pctx, cancel := s.platformCtx(ctx)
	err = s.platform.GrantRole(pctx, req.GuildID, req.Target.ID, roleID, fmt.Sprintf("Auto-mute: %d advertencias", count))
	cancel()
	if err != nil {
		return nil, platformFailure("auto-mute", err)
	}

	s.supersede(ctx, req.GuildID, req.Target.ID, models.ActionUnmute)
	action, err := s.schedule(ctx, req, models.ActionUnmute, seconds)
	if err != nil {
		s.rollbackMute(ctx, req, roleID)
		return nil, err
	}

	r := s.newRecord(req, audit.ActionAutoMute)
	r.Actor = nil
	r.Reason = fmt.Sprintf("%d advertencias", count)
	s.record(ctx, r.With("Time", duration.Format(seconds)))
	return &action, nil
}

func (s *Service) autoBan(ctx context.Context, req Request, count int) error {
	s.dm(ctx, req.Target.ID, s.appendAppeal(fmt.Sprintf("⛔ Fuiste baneado automáticamente de **%s** por acumular %d advertencias.",
		s.guildName(ctx, req.GuildID), count)))

	pctx, cancel := s.platformCtx(ctx)
	err := s.platform.BanMember(pctx, req.GuildID, req.Target.ID, fmt.Sprintf("Auto-ban: %d advertencias", count))
	cancel()
	if err != nil {
		return platformFailure("auto-ban", err)
	}

	// the auto-ban is permanent, so nothing may lift it later
	s.supersede(ctx, req.GuildID, req.Target.ID, models.ActionUnban)

	r := s.newRecord(req, audit.ActionAutoBan)
	r.Actor = nil
	r.Reason = fmt.Sprintf("%d advertencias", count)
	s.record(ctx, r.With("Time", "permanent"))
	return nil
}

// Unwarn removes one warning. It fails with ErrNoWarnings when there is none.
func (s *Service) Unwarn(ctx context.Context, req Request) (int, error) {
	remaining, err := s.ledger.Remove(ctx, req.GuildID, req.Target.ID)
	if errors.Is(err, warnings.ErrNone) {
		return 0, s.fail("unwarn", ErrNoWarnings)
	}
	if err != nil {
		return 0, s.fail("unwarn", err)
	}

	r := s.newRecord(req, audit.ActionUnwarn)
	s.record(ctx, r.With("Remaining", strconv.Itoa(remaining)))
	return remaining, nil
}

// Warnings returns the target's count. The lookup itself is audited.
func (s *Service) Warnings(ctx context.Context, req Request) (int, error) {
	count, err := s.ledger.Get(ctx, req.GuildID, req.Target.ID)
	if err != nil {
		return 0, s.fail("warnings", err)
	}

	r := s.newRecord(req, audit.ActionWarnings)
	s.record(ctx, r.With("Total", strconv.Itoa(count)))
	return count, nil
}
