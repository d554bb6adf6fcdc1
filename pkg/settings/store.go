// Package settings stores per-guild escalation thresholds and the log channel override.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/storage"
)

// DocumentName is the stored document holding every guild's settings.
const DocumentName = "settings"

// ErrInvalidSettings is returned when a patch would store out-of-range values.
var ErrInvalidSettings = errors.New("invalid settings")

// Store reads and merges guild settings.
type Store struct {
	doc *storage.Document[models.SettingsData]
}

// NewStore binds the store to backend.
func NewStore(backend storage.Backend) *Store {
	return &Store{doc: storage.NewDocument(backend, DocumentName, func() models.SettingsData {
		return models.SettingsData{}
	})}
}

// Ensure creates the settings document on first run.
func (s *Store) Ensure(ctx context.Context) error {
	return s.doc.Ensure(ctx)
}

// Get returns the effective settings for a guild, defaults filled in.
func (s *Store) Get(ctx context.Context, guildID string) (models.EffectiveSettings, error) {
	data, err := s.doc.Read(ctx)
	if err != nil {
		return models.GuildSettings{}.Resolve(), err
	}
	return data[guildID].Resolve(), nil
}

// Update merges patch into the guild's stored record and returns the result.
func (s *Store) Update(ctx context.Context, guildID string, patch models.GuildSettings) (models.EffectiveSettings, error) {
	if err := Validate(patch); err != nil {
		return models.EffectiveSettings{}, err
	}

	var out models.EffectiveSettings
	err := s.doc.Update(ctx, func(data *models.SettingsData) error {
		if *data == nil {
			*data = models.SettingsData{}
		}
		merged := (*data)[guildID].Merge(patch)
		if merged.LogChannelID != nil && *merged.LogChannelID == "" {
			merged.LogChannelID = nil
		}
		(*data)[guildID] = merged
		out = merged.Resolve()
		return nil
	})
	return out, err
}

// SetAutopunish stores all three escalation values at once.
func (s *Store) SetAutopunish(ctx context.Context, guildID string, warnToMute, autoMuteSeconds, warnToBan int) (models.EffectiveSettings, error) {
	return s.Update(ctx, guildID, models.GuildSettings{
		WarnToMute:      &warnToMute,
		AutoMuteSeconds: &autoMuteSeconds,
		WarnToBan:       &warnToBan,
	})
}

// SetLogChannel overrides the audit channel; an empty ID clears the override.
func (s *Store) SetLogChannel(ctx context.Context, guildID, channelID string) (models.EffectiveSettings, error) {
	id := models.Snowflake(channelID)
	return s.Update(ctx, guildID, models.GuildSettings{LogChannelID: &id})
}

// Validate checks the set fields of a patch. Zero thresholds disable that escalation.
func Validate(patch models.GuildSettings) error {
	if patch.WarnToMute != nil && *patch.WarnToMute < 0 {
		return fmt.Errorf("%w: warn_to_mute must be >= 0", ErrInvalidSettings)
	}
	if patch.AutoMuteSeconds != nil && *patch.AutoMuteSeconds <= 0 {
		return fmt.Errorf("%w: auto_mute_seconds must be > 0", ErrInvalidSettings)
	}
	if patch.WarnToBan != nil && *patch.WarnToBan < 0 {
		return fmt.Errorf("%w: warn_to_ban must be >= 0", ErrInvalidSettings)
	}
	return nil
}
