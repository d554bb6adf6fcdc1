package utils

import (
	"github.com/PancyStudios/PancyModBot/pkg/discord"
)

// createHelpCommand creates the /help command
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra información de ayuda",
		"utils",
		helpHandler,
	)
}

// helpHandler handles the /help command
func helpHandler(ctx *discord.CommandContext) error {
	return ctx.ReplyEphemeral(
		"📖 **Ayuda de PancyModBot**\n\n" +
			"**Utilidad:**\n" +
			"• `/ping` - Comprueba la latencia\n" +
			"• `/status` - Estado del bot\n" +
			"• `/say <mensaje> [canal]` - Envía un mensaje como el bot\n\n" +
			"**Moderación:**\n" +
			"• `/warn <usuario> [razón]` - Advierte a un usuario\n" +
			"• `/unwarn <usuario>` - Quita una advertencia\n" +
			"• `/warnings [usuario]` - Muestra las advertencias\n" +
			"• `/mute <usuario> <duración> [razón]` - Silencia a un usuario\n" +
			"• `/unmute <usuario>` - Quita el silencio\n" +
			"• `/ban <usuario> [duración] [razón]` - Banea (por defecto 1d, `p` permanente)\n" +
			"• `/unban <user_id>` - Desbanea por ID\n" +
			"• `/kick <usuario> [razón]` - Expulsa a un usuario\n\n" +
			"**Configuración:**\n" +
			"• `/settings autopunish` - Umbrales de sanción automática\n" +
			"• `/settings logchannel [canal]` - Canal de registros\n" +
			"• `/settings show` - Muestra la configuración",
	)
}
