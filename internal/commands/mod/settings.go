package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/duration"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

var (
	minZero = 0.0
	minOne  = 1.0
)

// createAutopunishCommand creates the /settings autopunish subcommand
func (h *handlers) createAutopunishCommand() *discord.Command {
	return discord.NewCommand(
		"autopunish",
		"Configura las sanciones automáticas por advertencias",
		"settings",
		h.autopunishHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "warn_to_mute",
			Description: "Advertencias para silenciar (0 desactiva)",
			Required:    true,
			MinValue:    &minZero,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "auto_mute_seconds",
			Description: "Segundos del silencio automático",
			Required:    true,
			MinValue:    &minOne,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "warn_to_ban",
			Description: "Advertencias para banear (0 desactiva)",
			Required:    true,
			MinValue:    &minZero,
		},
	).WithCapability(permissions.Administer)
}

func (h *handlers) autopunishHandler(ctx *discord.CommandContext) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	eff, err := h.svc.SetAutopunish(ctx.Context, ctx.Request(nil, ""),
		int(ctx.GetIntOption("warn_to_mute")),
		int(ctx.GetIntOption("auto_mute_seconds")),
		int(ctx.GetIntOption("warn_to_ban")),
	)
	if err != nil {
		return ctx.EditReplyError(err)
	}
	return ctx.EditReplyEmbed(settingsEmbed("✅ - Sanciones automáticas actualizadas", eff))
}

// createLogChannelCommand creates the /settings logchannel subcommand
func (h *handlers) createLogChannelCommand() *discord.Command {
	return discord.NewCommand(
		"logchannel",
		"Cambia el canal de registros (vacío para usar el predeterminado)",
		"settings",
		h.logChannelHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "canal",
			Description:  "Canal de texto para los registros",
			Required:     false,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		},
	).WithCapability(permissions.Administer)
}

func (h *handlers) logChannelHandler(ctx *discord.CommandContext) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	var channelID string
	if opt := ctx.GetOption("canal"); opt != nil {
		channelID, _ = opt.Value.(string)
	}

	eff, err := h.svc.SetLogChannel(ctx.Context, ctx.Request(nil, ""), channelID)
	if err != nil {
		return ctx.EditReplyError(err)
	}
	return ctx.EditReplyEmbed(settingsEmbed("✅ - Canal de registros actualizado", eff))
}

// createShowSettingsCommand creates the /settings show subcommand
func (h *handlers) createShowSettingsCommand() *discord.Command {
	return discord.NewCommand(
		"show",
		"Muestra la configuración de moderación",
		"settings",
		h.showSettingsHandler,
	).WithCapability(permissions.Moderate)
}

func (h *handlers) showSettingsHandler(ctx *discord.CommandContext) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	eff, err := h.svc.Settings(ctx.Context, ctx.Interaction.GuildID)
	if err != nil {
		return ctx.EditReplyError(err)
	}
	return ctx.EditReplyEmbed(settingsEmbed("⚙️ - Configuración de moderación", eff))
}

func settingsEmbed(title string, eff models.EffectiveSettings) *discordgo.MessageEmbed {
	threshold := func(n int) string {
		if n == 0 {
			return "Desactivado"
		}
		return fmt.Sprintf("%d advertencias", n)
	}
	logChannel := "Predeterminado"
	if eff.LogChannelID != "" {
		logChannel = "<#" + eff.LogChannelID + ">"
	}

	return &discordgo.MessageEmbed{
		Title: title,
		Color: 0x3498db,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔇 Silencio automático", Value: threshold(eff.WarnToMute), Inline: true},
			{Name: "⏱️ Duración del silencio", Value: duration.Format(int64(eff.AutoMuteSeconds)), Inline: true},
			{Name: "⛔ Baneo automático", Value: threshold(eff.WarnToBan), Inline: true},
			{Name: "📋 Canal de registros", Value: logChannel},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "💫 - Developed by PancyStudios",
		},
	}
}
