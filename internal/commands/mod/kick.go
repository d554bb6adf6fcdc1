package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
)

// createKickCommand creates the /kick command
func (h *handlers) createKickCommand() *discord.Command {
	return discord.NewCommand(
		"kick",
		"Expulsa a un usuario del servidor",
		"mod",
		h.kickHandler,
	).WithOptions(
		userOption("Usuario a expulsar", true),
		reasonOption(),
	).WithCapability(permissions.Moderate)
}

func (h *handlers) kickHandler(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		return err
	}
	user, ok := target(ctx)
	if !ok {
		return nil
	}

	req := ctx.Request(user, ctx.GetStringOption("razon"))
	if err := h.svc.Kick(ctx.Context, req); err != nil {
		return ctx.EditReplyError(err)
	}
	return ctx.EditReply(fmt.Sprintf("👢 %s fue expulsado. Razón: %s", user.Mention(), reasonText(req.Reason)))
}
