package events

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/anticrash"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterGuildEvents registers all guild-related event handlers
func RegisterGuildEvents(client *discord.ExtendedClient) {
	client.EventHandler.RegisterEvent(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		defer anticrash.Recover()
		onGuildCreate(s, g)
	})
	client.EventHandler.RegisterEvent(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		defer anticrash.Recover()
		onGuildDelete(s, g)
	})
}

// onGuildCreate is called for every guild on connect and when the bot joins a server
func onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	// guilds replayed on connect are not new joins
	if g.JoinedAt.Before(time.Now().Add(-10 * time.Second)) {
		return
	}

	logger.Info(fmt.Sprintf("➕ Bot agregado a servidor: %s (ID: %s)", g.Name, g.ID), "Guild")

	if g.SystemChannelID == "" {
		return
	}
	_, err := s.ChannelMessageSendEmbed(g.SystemChannelID, &discordgo.MessageEmbed{
		Title:       "¡Gracias por agregarme! 🛡️",
		Description: "Hola, soy **PancyModBot**. Usa `/help` para ver todos mis comandos.",
		Color:       0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "⚠️ Advertencias",
				Value:  "`/warn` con sanciones automáticas",
				Inline: true,
			},
			{
				Name:   "⚙️ Configuración",
				Value:  "Ajusta los umbrales con `/settings`",
				Inline: true,
			},
		},
	})
	if err != nil {
		logger.Debug(fmt.Sprintf("No se pudo enviar el mensaje de bienvenida en %s: %v", g.ID, err), "Guild")
	}
}

// onGuildDelete is called when the bot leaves a server or it becomes unavailable
func onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Unavailable {
		logger.Warn(fmt.Sprintf("Servidor %s no disponible temporalmente", g.ID), "Guild")
		return
	}
	logger.Info(fmt.Sprintf("➖ Bot eliminado del servidor: %s", g.ID), "Guild")
}
