package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := storage.NewFileBackend(dir)
	require.NoError(t, err)
	return NewStore(backend), dir
}

func intPtr(v int) *int { return &v }

func TestDefaultsWhenAbsent(t *testing.T) {
	s, _ := newStore(t)

	got, err := s.Get(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, models.EffectiveSettings{WarnToMute: 3, AutoMuteSeconds: 600, WarnToBan: 5}, got)
}

func TestPartialUpdateMerges(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	_, err := s.SetLogChannel(ctx, "g1", "123")
	require.NoError(t, err)

	got, err := s.Update(ctx, "g1", models.GuildSettings{WarnToBan: intPtr(8)})
	require.NoError(t, err)
	assert.Equal(t, models.EffectiveSettings{WarnToMute: 3, AutoMuteSeconds: 600, WarnToBan: 8, LogChannelID: "123"}, got)

	got, err = s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "123", got.LogChannelID)
	assert.Equal(t, 8, got.WarnToBan)
}

func TestClearLogChannel(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	_, _ = s.SetLogChannel(ctx, "g1", "123")
	got, err := s.SetLogChannel(ctx, "g1", "")
	require.NoError(t, err)
	assert.Empty(t, got.LogChannelID)
}

func TestInvalidPatchRejected(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	tests := []struct {
		name  string
		patch models.GuildSettings
	}{
		{"negative mute", models.GuildSettings{WarnToMute: intPtr(-1)}},
		{"zero seconds", models.GuildSettings{AutoMuteSeconds: intPtr(0)}},
		{"negative ban", models.GuildSettings{WarnToBan: intPtr(-3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Update(ctx, "g1", tt.patch)
			assert.ErrorIs(t, err, ErrInvalidSettings)
		})
	}

	got, _ := s.Get(ctx, "g1")
	assert.Equal(t, 3, got.WarnToMute)
}

func TestZeroDisablesEscalation(t *testing.T) {
	s, _ := newStore(t)
	got, err := s.SetAutopunish(context.Background(), "g1", 0, 60, 0)
	require.NoError(t, err)
	assert.Equal(t, models.EffectiveSettings{WarnToMute: 0, AutoMuteSeconds: 60, WarnToBan: 0}, got)
}

func TestLegacySettingsFile(t *testing.T) {
	s, dir := newStore(t)
	legacy := `{"g1": {"warn_to_mute": 2, "auto_mute_seconds": 30, "warn_to_ban": 4, "log_channel_id": 999}, "g2": {"log_channel_id": null}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DocumentName+".json"), []byte(legacy), 0644))

	got, err := s.Get(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, models.EffectiveSettings{WarnToMute: 2, AutoMuteSeconds: 30, WarnToBan: 4, LogChannelID: "999"}, got)

	got, err = s.Get(context.Background(), "g2")
	require.NoError(t, err)
	assert.Empty(t, got.LogChannelID)
}
