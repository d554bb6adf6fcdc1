// Package discord provides the command handler for loading and registering commands.
package discord

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler manages command loading and registration
type CommandHandler struct {
	client           *ExtendedClient
	slashCommands    []*discordgo.ApplicationCommand
	slashCommandsDev []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:           client,
		slashCommands:    make([]*discordgo.ApplicationCommand, 0),
		slashCommandsDev: make([]*discordgo.ApplicationCommand, 0),
	}
}

// RegisterCommand adds a top-level command to the handler
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	ch.client.Commands.Set(cmd.Name, cmd)

	appCmd := cmd.ToApplicationCommand()
	if cmd.IsDev {
		ch.slashCommandsDev = append(ch.slashCommandsDev, appCmd)
	} else {
		ch.slashCommands = append(ch.slashCommands, appCmd)
	}

	logger.Debug("Comando registrado: "+cmd.Name, "CommandHandler")
}

// BuildCommandGroup creates a command group with subcommands. The group is
// shown to whoever may run its least privileged subcommand; each subcommand
// still checks its own capability when dispatched.
func (ch *CommandHandler) BuildCommandGroup(name, description string, subcommands ...*Command) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))
	lowest := permissions.Administer

	for _, cmd := range subcommands {
		fullName := name + "." + cmd.Name
		ch.client.Commands.Set(fullName, cmd)
		if cmd.Capability < lowest {
			lowest = cmd.Capability
		}

		options = append(options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		})
	}

	dmPermission := false
	return &discordgo.ApplicationCommand{
		Name:                     name,
		Description:              description,
		Options:                  options,
		DefaultMemberPermissions: permissions.DefaultMemberPermissions(lowest),
		DMPermission:             &dmPermission,
	}
}

// AddGlobalCommand adds a command to the global command list
func (ch *CommandHandler) AddGlobalCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommands = append(ch.slashCommands, cmd)
}

// AddDevCommand adds a command to the dev command list
func (ch *CommandHandler) AddDevCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommandsDev = append(ch.slashCommandsDev, cmd)
}

// GlobalCommands returns the commands registered for every guild
func (ch *CommandHandler) GlobalCommands() []*discordgo.ApplicationCommand {
	return ch.slashCommands
}

// RegisterCommands overwrites the application's slash commands with the
// registered set. Dev commands go to devGuildID when it is set.
func (ch *CommandHandler) RegisterCommands(devGuildID string) {
	logger.Info("🔄 Registrando comandos globales...", "CommandHandler")
	if err := ch.Sync(""); err != nil {
		logger.Error("Error registrando comandos globales: "+err.Error(), "CommandHandler")
	} else {
		logger.Success(fmt.Sprintf("✅ %d comandos globales registrados.", len(ch.slashCommands)), "CommandHandler")
	}

	if devGuildID == "" || len(ch.slashCommandsDev) == 0 {
		return
	}
	logger.Info("🔄 Registrando comandos de desarrollo en el servidor "+devGuildID+"...", "CommandHandler")
	_, err := ch.client.Session.ApplicationCommandBulkOverwrite(ch.appID(), devGuildID, ch.slashCommandsDev)
	if err != nil {
		logger.Error("Error registrando comandos de desarrollo: "+err.Error(), "CommandHandler")
		return
	}
	logger.Success("✅ Comandos de desarrollo registrados.", "CommandHandler")
}

// Sync replaces the commands of guildID (global when empty) with the
// registered global set in a single request.
func (ch *CommandHandler) Sync(guildID string) error {
	_, err := ch.client.Session.ApplicationCommandBulkOverwrite(ch.appID(), guildID, ch.slashCommands)
	return err
}

// List returns the commands Discord currently has for guildID (global when empty).
func (ch *CommandHandler) List(guildID string) ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(ch.appID(), guildID)
}

// Unregister removes every command of guildID (global when empty).
func (ch *CommandHandler) Unregister(guildID string) error {
	commands, err := ch.List(guildID)
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		if err := ch.client.Session.ApplicationCommandDelete(ch.appID(), guildID, cmd.ID); err != nil {
			logger.Error("Error eliminando comando "+cmd.Name+": "+err.Error(), "CommandHandler")
		}
	}

	logger.Success(fmt.Sprintf("%d comandos eliminados.", len(commands)), "CommandHandler")
	return nil
}

func (ch *CommandHandler) appID() string {
	if ch.client.AppID != "" {
		return ch.client.AppID
	}
	if ch.client.Session.State != nil && ch.client.Session.State.User != nil {
		return ch.client.Session.State.User.ID
	}
	return ""
}
