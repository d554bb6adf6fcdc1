package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/duration"
	"github.com/PancyStudios/PancyModBot/pkg/escalation"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
)

// createWarnCommand creates the /warn command
func (h *handlers) createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Advierte a un usuario",
		"mod",
		h.warnHandler,
	).WithOptions(
		userOption("Usuario a advertir", true),
		reasonOption(),
	).WithCapability(permissions.Moderate)
}

func (h *handlers) warnHandler(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		return err
	}
	user, ok := target(ctx)
	if !ok {
		return nil
	}

	req := ctx.Request(user, ctx.GetStringOption("razon"))
	res, err := h.svc.Warn(ctx.Context, req)
	if err != nil {
		return ctx.EditReplyError(err)
	}

	if err := ctx.EditReply(fmt.Sprintf("⚠️ %s recibió una advertencia. Razón: %s (Total: %d)",
		user.Mention(), reasonText(req.Reason), res.Count)); err != nil {
		return err
	}

	if res.EscalationErr != nil {
		announce(ctx, "❌ No se pudo aplicar la sanción automática. ¿El bot tiene permisos suficientes?")
		return nil
	}
	switch res.Escalation.Kind {
	case escalation.TimedMute:
		announce(ctx, fmt.Sprintf("🔇 %s fue silenciado automáticamente durante %s (%d advertencias).",
			user.Mention(), duration.Format(int64(res.Escalation.Seconds)), res.Count))
	case escalation.Ban:
		announce(ctx, fmt.Sprintf("⛔ %s fue baneado automáticamente (%d advertencias).", user.Mention(), res.Count))
	}
	return nil
}
