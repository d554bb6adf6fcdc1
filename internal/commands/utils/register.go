// Package utils provides the general purpose commands: ping, say, help and status.
package utils

import (
	"context"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/moderation"
)

// StorageStatus reports the storage backend health.
type StorageStatus interface {
	Status(ctx context.Context) (string, bool)
}

type handlers struct {
	svc     *moderation.Service
	storage StorageStatus
}

// RegisterUtilsCommands registers the utility commands as top-level commands
func RegisterUtilsCommands(client *discord.ExtendedClient, svc *moderation.Service, storage StorageStatus) {
	h := &handlers{svc: svc, storage: storage}

	client.CommandHandler.RegisterCommand(createPingCommand())
	client.CommandHandler.RegisterCommand(h.createSayCommand())
	client.CommandHandler.RegisterCommand(createHelpCommand())
	client.CommandHandler.RegisterCommand(h.createStatusCommand())
}
