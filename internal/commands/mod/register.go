// Package mod provides the moderation commands. Each command lives in its own file.
package mod

import (
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/moderation"
)

// handlers holds what the moderation commands need at run time
type handlers struct {
	svc *moderation.Service
}

// RegisterModCommands registers the moderation commands and the /settings group
func RegisterModCommands(client *discord.ExtendedClient, svc *moderation.Service) {
	h := &handlers{svc: svc}

	for _, cmd := range []*discord.Command{
		h.createWarnCommand(),
		h.createUnwarnCommand(),
		h.createWarningsCommand(),
		h.createMuteCommand(),
		h.createUnmuteCommand(),
		h.createBanCommand(),
		h.createUnbanCommand(),
		h.createKickCommand(),
	} {
		client.CommandHandler.RegisterCommand(cmd)
	}

	settingsGroup := client.CommandHandler.BuildCommandGroup(
		"settings",
		"Configuración de moderación del servidor",
		h.createAutopunishCommand(),
		h.createLogChannelCommand(),
		h.createShowSettingsCommand(),
	)
	client.CommandHandler.AddGlobalCommand(settingsGroup)
}
