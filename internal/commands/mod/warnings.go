package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

// createWarningsCommand creates the /warnings command
func (h *handlers) createWarningsCommand() *discord.Command {
	return discord.NewCommand(
		"warnings",
		"Muestra las advertencias de un usuario",
		"mod",
		h.warningsHandler,
	).WithOptions(
		userOption("Usuario a consultar (por defecto tú)", false),
	).WithCapability(permissions.Moderate)
}

func (h *handlers) warningsHandler(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		return err
	}

	user := ctx.GetUserOption("usuario")
	if user == nil {
		user = ctx.User()
	}

	count, err := h.svc.Warnings(ctx.Context, ctx.Request(user, ""))
	if err != nil {
		return ctx.EditReplyError(err)
	}

	color := 0x00FF00
	if count > 0 {
		color = 0xFFA500
	}
	return ctx.EditReplyEmbed(&discordgo.MessageEmbed{
		Title: fmt.Sprintf("🔖 - Advertencias de %s", user.Username),
		Description: fmt.Sprintf("ℹ️ %s tiene %d advertencia(s).\n\n> 🕒 - **Fecha de consulta:** <t:%d>",
			user.Mention(), count, time.Now().Unix()),
		Color: color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "💫 - Developed by PancyStudios",
		},
	})
}
