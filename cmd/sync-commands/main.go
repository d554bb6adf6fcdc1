// Package main provides a utility to sync Discord slash commands.
// It removes stale commands from Discord and registers the currently defined ones.
//
// Usage:
//
//	go run ./cmd/sync-commands [options]
//
// Options:
//
//	-list           List the registered commands
//	-clean          Remove all commands without registering new ones
//	-guild <id>     Target a specific guild instead of global commands
//	-sync           Replace the registered commands with the current ones (default)
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/PancyStudios/PancyModBot/internal/commands"
	"github.com/PancyStudios/PancyModBot/pkg/config"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
)

func main() {
	// Parse command line flags
	listCmd := flag.Bool("list", false, "List all registered commands")
	cleanCmd := flag.Bool("clean", false, "Remove all commands without registering new ones")
	guildID := flag.String("guild", "", "Target a specific guild (leave empty for global)")
	syncCmd := flag.Bool("sync", false, "Sync commands (remove stale, register current)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.LogsDir, cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando utilidad de sincronización de comandos...", "SyncCommands")

	// Only the REST API is used, the gateway is never opened
	client, err := discord.NewClient(cfg.BotToken, discord.PlatformOptions{})
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "SyncCommands")
		os.Exit(1)
	}
	if err := client.ResolveAppID(); err != nil {
		logger.Critical(fmt.Sprintf("Error obteniendo la aplicación: %v", err), "SyncCommands")
		os.Exit(1)
	}

	// Command definitions only; handlers never run here
	commands.RegisterAll(client, nil, nil)

	var opErr error
	switch {
	case *listCmd:
		opErr = listCommands(client, *guildID)
	case *cleanCmd:
		opErr = cleanCommands(client, *guildID)
	case *syncCmd:
		opErr = syncCommands(client, *guildID)
	default:
		opErr = syncCommands(client, *guildID)
	}
	if opErr != nil {
		logger.Error(opErr.Error(), "SyncCommands")
		os.Exit(1)
	}

	logger.Success("Operación completada exitosamente", "SyncCommands")
}

func scope(guildID string) string {
	if guildID == "" {
		return "globales"
	}
	return "del servidor " + guildID
}

// listCommands lists all commands registered with Discord
func listCommands(client *discord.ExtendedClient, guildID string) error {
	logger.Info("📋 Listando comandos "+scope(guildID)+"...", "SyncCommands")

	cmds, err := client.CommandHandler.List(guildID)
	if err != nil {
		return fmt.Errorf("error obteniendo comandos: %w", err)
	}
	if len(cmds) == 0 {
		logger.Info("No hay comandos registrados", "SyncCommands")
		return nil
	}

	logger.Info(fmt.Sprintf("Comandos encontrados: %d", len(cmds)), "SyncCommands")
	for i, cmd := range cmds {
		logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, cmd.Name, cmd.Description, cmd.ID), "SyncCommands")
	}
	return nil
}

// cleanCommands removes all commands from Discord
func cleanCommands(client *discord.ExtendedClient, guildID string) error {
	logger.Info("🧹 Eliminando comandos "+scope(guildID)+"...", "SyncCommands")

	if err := client.CommandHandler.Unregister(guildID); err != nil {
		return fmt.Errorf("error eliminando comandos: %w", err)
	}
	logger.Success("✅ Todos los comandos han sido eliminados", "SyncCommands")
	return nil
}

// syncCommands replaces the registered commands with the current definitions
func syncCommands(client *discord.ExtendedClient, guildID string) error {
	logger.Info(fmt.Sprintf("🔄 Sincronizando %d comandos %s...", len(client.CommandHandler.GlobalCommands()), scope(guildID)), "SyncCommands")

	if err := client.CommandHandler.Sync(guildID); err != nil {
		return fmt.Errorf("error sincronizando comandos: %w", err)
	}
	logger.Success("✅ Comandos sincronizados correctamente", "SyncCommands")
	return nil
}
