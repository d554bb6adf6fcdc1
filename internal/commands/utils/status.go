package utils

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
)

// createStatusCommand creates the /status command
func (h *handlers) createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"utils",
		h.statusHandler,
	)
}

// statusHandler handles the /status command
func (h *handlers) statusHandler(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		return err
	}

	storageStatus := "Desconocido"
	if h.storage != nil {
		storageStatus, _ = h.storage.Status(ctx.Context)
	}

	pending := "?"
	if actions, err := h.svc.Scheduler().Pending(ctx.Context); err == nil {
		pending = fmt.Sprint(len(actions))
	}

	return ctx.EditReply(fmt.Sprintf(
		"📊 **Estado del Bot**\n"+
			"• Bot: 🟢 Online\n"+
			"• Almacenamiento: %s\n"+
			"• Servidores: %d\n"+
			"• Acciones pendientes: %s\n"+
			"• Activo desde: <t:%d:R>",
		storageStatus,
		ctx.Client.GuildCount(),
		pending,
		ctx.Client.StartTime.Unix(),
	))
}
