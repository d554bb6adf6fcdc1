package mod

import (
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/moderation"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

// createUnbanCommand creates the /unban command. It takes a raw ID because
// banned users cannot be picked from the member list.
func (h *handlers) createUnbanCommand() *discord.Command {
	return discord.NewCommand(
		"unban",
		"Desbanea a un usuario por su ID",
		"mod",
		h.unbanHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "user_id",
			Description: "ID del usuario baneado",
			Required:    true,
		},
	).WithCapability(permissions.Moderate)
}

func (h *handlers) unbanHandler(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		return err
	}

	req := ctx.Request(nil, "")
	req.Target = moderation.Member{ID: ctx.GetStringOption("user_id")}

	user, err := h.svc.Unban(ctx.Context, req)
	if err != nil {
		return ctx.EditReplyError(err)
	}
	return ctx.EditReply("✅ " + user.Mention() + " fue desbaneado.")
}
