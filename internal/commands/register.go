// Package commands wires every command category into the Discord client.
// Commands are organized in subdirectories by category (utils, mod).
package commands

import (
	"github.com/PancyStudios/PancyModBot/internal/commands/mod"
	"github.com/PancyStudios/PancyModBot/internal/commands/utils"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/moderation"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, svc *moderation.Service, storage utils.StorageStatus) {
	// /ping, /say, /help, /status
	utils.RegisterUtilsCommands(client, svc, storage)

	// /warn, /unwarn, /warnings, /mute, /unmute, /ban, /unban, /kick and /settings
	mod.RegisterModCommands(client, svc)
}
