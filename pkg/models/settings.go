package models

// Default escalation thresholds applied when a guild has not configured its own.
const (
	DefaultWarnToMute      = 3
	DefaultAutoMuteSeconds = 600
	DefaultWarnToBan       = 5
)

// GuildSettings is the stored per-guild record. Nil fields are unset and fall
// back to the defaults, so a partial update can merge into an existing record.
type GuildSettings struct {
	WarnToMute      *int       `bson:"warn_to_mute,omitempty" json:"warn_to_mute,omitempty"`
	AutoMuteSeconds *int       `bson:"auto_mute_seconds,omitempty" json:"auto_mute_seconds,omitempty"`
	WarnToBan       *int       `bson:"warn_to_ban,omitempty" json:"warn_to_ban,omitempty"`
	LogChannelID    *Snowflake `bson:"log_channel_id,omitempty" json:"log_channel_id,omitempty"`
}

// SettingsData maps guild ID -> stored settings.
type SettingsData map[string]GuildSettings

// EffectiveSettings is a fully resolved GuildSettings.
type EffectiveSettings struct {
	WarnToMute      int    `json:"warn_to_mute"`
	AutoMuteSeconds int    `json:"auto_mute_seconds"`
	WarnToBan       int    `json:"warn_to_ban"`
	LogChannelID    string `json:"log_channel_id,omitempty"`
}

// Resolve fills unset fields with the defaults.
func (g GuildSettings) Resolve() EffectiveSettings {
	e := EffectiveSettings{
		WarnToMute:      DefaultWarnToMute,
		AutoMuteSeconds: DefaultAutoMuteSeconds,
		WarnToBan:       DefaultWarnToBan,
	}
	if g.WarnToMute != nil {
		e.WarnToMute = *g.WarnToMute
	}
	if g.AutoMuteSeconds != nil {
		e.AutoMuteSeconds = *g.AutoMuteSeconds
	}
	if g.WarnToBan != nil {
		e.WarnToBan = *g.WarnToBan
	}
	if g.LogChannelID != nil {
		e.LogChannelID = string(*g.LogChannelID)
	}
	return e
}

// Merge copies every set field of patch over g.
func (g GuildSettings) Merge(patch GuildSettings) GuildSettings {
	if patch.WarnToMute != nil {
		g.WarnToMute = patch.WarnToMute
	}
	if patch.AutoMuteSeconds != nil {
		g.AutoMuteSeconds = patch.AutoMuteSeconds
	}
	if patch.WarnToBan != nil {
		g.WarnToBan = patch.WarnToBan
	}
	if patch.LogChannelID != nil {
		g.LogChannelID = patch.LogChannelID
	}
	return g
}
