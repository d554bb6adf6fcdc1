package events

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// RegisterModerationEvents keeps pending actions consistent with what happens
// outside the bot's commands.
func RegisterModerationEvents(client *discord.ExtendedClient, svc *moderation.Service) {
	client.EventHandler.OnGuildMemberAdd(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		onGuildMemberAdd(svc, m)
	})
	client.EventHandler.OnGuildBanRemove(func(s *discordgo.Session, b *discordgo.GuildBanRemove) {
		onGuildBanRemove(svc, b)
	})
}

// onGuildMemberAdd puts the mute role back on a member who left to shed it
func onGuildMemberAdd(svc *moderation.Service, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil || m.User.Bot {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	reapplied, err := svc.ReapplyMute(ctx, m.GuildID, m.User.ID)
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo reaplicar el silencio a %s en %s: %v", m.User.ID, m.GuildID, err), "Member")
		return
	}
	if reapplied {
		logger.Info(fmt.Sprintf("🔇 Silencio reaplicado a %s al volver a %s", m.User.Username, m.GuildID), "Member")
	}
}

// onGuildBanRemove drops the pending unban of a ban lifted outside the bot
func onGuildBanRemove(svc *moderation.Service, b *discordgo.GuildBanRemove) {
	if b.User == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	n, err := svc.CancelPendingUnban(ctx, b.GuildID, b.User.ID)
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo cancelar el desbaneo pendiente de %s: %v", b.User.ID, err), "Ban")
		return
	}
	if n > 0 {
		logger.Info(fmt.Sprintf("Desbaneo pendiente de %s cancelado (desbaneado fuera del bot)", b.User.ID), "Ban")
	}
}
