package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/duration"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

// createMuteCommand creates the /mute command
func (h *handlers) createMuteCommand() *discord.Command {
	return discord.NewCommand(
		"mute",
		"Silencia a un usuario durante un tiempo",
		"mod",
		h.muteHandler,
	).WithOptions(
		userOption("Usuario a silenciar", true),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duracion",
			Description: "Duración: 600, 10m, 2h, 1d",
			Required:    true,
		},
		reasonOption(),
	).WithCapability(permissions.Moderate)
}

func (h *handlers) muteHandler(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		return err
	}
	user, ok := target(ctx)
	if !ok {
		return nil
	}

	req := ctx.Request(user, ctx.GetStringOption("razon"))
	res, err := h.svc.Mute(ctx.Context, req, ctx.GetStringOption("duracion"))
	if err != nil {
		return ctx.EditReplyError(err)
	}
	return ctx.EditReply(fmt.Sprintf("🔇 %s fue silenciado durante %s. Razón: %s",
		user.Mention(), duration.Format(res.Seconds), reasonText(req.Reason)))
}
