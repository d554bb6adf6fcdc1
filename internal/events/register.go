// Package events provides the gateway event handlers of the bot.
// Events are organized by category (ready, guild, member, ban).
package events

import (
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/moderation"
)

// eventTimeout bounds the moderation work done inside one gateway event.
const eventTimeout = 15 * time.Second

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, svc *moderation.Service) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	// Ready event (bot startup)
	RegisterReadyEvent(client)

	// Guild events (server join/leave)
	RegisterGuildEvents(client)

	// Mute evasion and external unbans
	RegisterModerationEvents(client, svc)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
