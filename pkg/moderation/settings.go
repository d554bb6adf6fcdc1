package moderation

import (
	"context"
	"strconv"

	"github.com/PancyStudios/PancyModBot/pkg/audit"
	"github.com/PancyStudios/PancyModBot/pkg/models"
)

// SetAutopunish stores the escalation thresholds of a guild.
func (s *Service) SetAutopunish(ctx context.Context, req Request, warnToMute, autoMuteSeconds, warnToBan int) (models.EffectiveSettings, error) {
	eff, err := s.settings.SetAutopunish(ctx, req.GuildID, warnToMute, autoMuteSeconds, warnToBan)
	if err != nil {
		return eff, s.fail("settings", err)
	}

	r := s.newRecord(req, audit.ActionSettings)
	s.record(ctx, r.
		With("warn_to_mute", strconv.Itoa(eff.WarnToMute)).
		With("auto_mute_seconds", strconv.Itoa(eff.AutoMuteSeconds)).
		With("warn_to_ban", strconv.Itoa(eff.WarnToBan)))
	return eff, nil
}

// SetLogChannel overrides the guild's log channel; an empty ID clears it.
func (s *Service) SetLogChannel(ctx context.Context, req Request, channelID string) (models.EffectiveSettings, error) {
	eff, err := s.settings.SetLogChannel(ctx, req.GuildID, channelID)
	if err != nil {
		return eff, s.fail("settings", err)
	}

	value := eff.LogChannelID
	if value == "" {
		value = "default"
	}
	r := s.newRecord(req, audit.ActionSettings)
	s.record(ctx, r.With("log_channel_id", value))
	return eff, nil
}
