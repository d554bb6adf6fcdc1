package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/duration"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

// createBanCommand creates the /ban command
func (h *handlers) createBanCommand() *discord.Command {
	return discord.NewCommand(
		"ban",
		"Banea a un usuario del servidor",
		"mod",
		h.banHandler,
	).WithOptions(
		userOption("Usuario a banear", true),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duracion",
			Description: "Duración: 10m, 2h, 1d o 'p' para permanente (por defecto 1d)",
			Required:    false,
		},
		reasonOption(),
	).WithCapability(permissions.Moderate)
}

func (h *handlers) banHandler(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		return err
	}
	user, ok := target(ctx)
	if !ok {
		return nil
	}

	req := ctx.Request(user, ctx.GetStringOption("razon"))
	res, err := h.svc.Ban(ctx.Context, req, ctx.GetStringOption("duracion"))
	if err != nil {
		return ctx.EditReplyError(err)
	}

	if res.Permanent {
		return ctx.EditReply(fmt.Sprintf("⛔ %s fue baneado de forma permanente. Razón: %s", user.Mention(), reasonText(req.Reason)))
	}
	return ctx.EditReply(fmt.Sprintf("⛔ %s fue baneado durante %s. Razón: %s",
		user.Mention(), duration.Format(res.Seconds), reasonText(req.Reason)))
}
