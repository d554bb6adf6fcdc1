package mod

import (
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
)

// createUnmuteCommand creates the /unmute command
func (h *handlers) createUnmuteCommand() *discord.Command {
	return discord.NewCommand(
		"unmute",
		"Quita el silencio a un usuario",
		"mod",
		h.unmuteHandler,
	).WithOptions(
		userOption("Usuario a desilenciar", true),
	).WithCapability(permissions.Moderate)
}

func (h *handlers) unmuteHandler(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		return err
	}
	user, ok := target(ctx)
	if !ok {
		return nil
	}

	if err := h.svc.Unmute(ctx.Context, ctx.Request(user, "")); err != nil {
		return ctx.EditReplyError(err)
	}
	return ctx.EditReply("✅ " + user.Mention() + " ya no está silenciado.")
}
