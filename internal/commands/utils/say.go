package utils

import (
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

// createSayCommand creates the /say command
func (h *handlers) createSayCommand() *discord.Command {
	return discord.NewCommand(
		"say",
		"Envía un mensaje como el bot",
		"utils",
		h.sayHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "mensaje",
			Description: "Texto a enviar",
			Required:    true,
			MaxLength:   2000,
		},
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "canal",
			Description:  "Canal de destino (por defecto este)",
			Required:     false,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		},
	).WithCapability(permissions.Administer)
}

func (h *handlers) sayHandler(ctx *discord.CommandContext) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	var channelID string
	if opt := ctx.GetOption("canal"); opt != nil {
		channelID, _ = opt.Value.(string)
	}

	if err := h.svc.Say(ctx.Context, ctx.Request(nil, ""), channelID, ctx.GetStringOption("mensaje")); err != nil {
		return ctx.EditReplyError(err)
	}
	return ctx.EditReply("✅ Mensaje enviado.")
}
