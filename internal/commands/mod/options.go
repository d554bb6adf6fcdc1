package mod

import (
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

func userOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: description,
		Required:    required,
	}
}

func reasonOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "razon",
		Description: "Razón de la sanción",
		Required:    false,
		MaxLength:   512,
	}
}

// target reads the required "usuario" option. It answers the interaction itself
// when the option cannot be resolved.
func target(ctx *discord.CommandContext) (*discordgo.User, bool) {
	u := ctx.GetUserOption("usuario")
	if u == nil {
		ctx.EditReply("❌ No se pudo encontrar al usuario.")
		return nil, false
	}
	return u, true
}

// announce posts a follow-up line in the channel the command ran in
func announce(ctx *discord.CommandContext, content string) {
	ctx.Session.ChannelMessageSend(ctx.Interaction.ChannelID, content, discordgo.WithContext(ctx.Context))
}

func reasonText(reason string) string {
	if reason == "" {
		return moderation.DefaultReason
	}
	return reason
}
