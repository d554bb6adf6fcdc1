package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
)

// createUnwarnCommand creates the /unwarn command
func (h *handlers) createUnwarnCommand() *discord.Command {
	return discord.NewCommand(
		"unwarn",
		"Quita una advertencia a un usuario",
		"mod",
		h.unwarnHandler,
	).WithOptions(
		userOption("Usuario al que quitar la advertencia", true),
	).WithCapability(permissions.Moderate)
}

func (h *handlers) unwarnHandler(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		return err
	}
	user, ok := target(ctx)
	if !ok {
		return nil
	}

	remaining, err := h.svc.Unwarn(ctx.Context, ctx.Request(user, ""))
	if err != nil {
		return ctx.EditReplyError(err)
	}
	return ctx.EditReply(fmt.Sprintf("✅ Se quitó una advertencia a %s. Quedan: %d", user.Mention(), remaining))
}
