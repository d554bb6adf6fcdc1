// Package main is the entry point for PancyModBot.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyModBot/internal/commands"
	"github.com/PancyStudios/PancyModBot/internal/events"
	"github.com/PancyStudios/PancyModBot/pkg/anticrash"
	"github.com/PancyStudios/PancyModBot/pkg/audit"
	"github.com/PancyStudios/PancyModBot/pkg/config"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/moderation"
	"github.com/PancyStudios/PancyModBot/pkg/mqtt"
	"github.com/PancyStudios/PancyModBot/pkg/scheduler"
	"github.com/PancyStudios/PancyModBot/pkg/settings"
	"github.com/PancyStudios/PancyModBot/pkg/storage"
	"github.com/PancyStudios/PancyModBot/pkg/warnings"
	"github.com/PancyStudios/PancyModBot/pkg/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.LogsDir, cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando PancyModBot...", "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize the crash guard; a failure spike shuts everything down
	var shutdown func()
	anticrash.Init(anticrash.Options{
		WebhookURL: cfg.ErrorWebhook,
		Shutdown: func() {
			if shutdown != nil {
				shutdown()
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	backend, mongoBackend, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error abriendo el almacenamiento: %v", err), "Main")
		os.Exit(1)
	}

	ledger := warnings.NewLedger(backend)
	settingsStore := settings.NewStore(backend)
	sched := scheduler.New(backend, scheduler.Options{
		Timeout:   cfg.PlatformTimeout,
		Retention: cfg.ActionRetention,
	})
	if err := ledger.Ensure(ctx); err != nil {
		logger.Critical(fmt.Sprintf("Error inicializando advertencias: %v", err), "Main")
		os.Exit(1)
	}
	if err := settingsStore.Ensure(ctx); err != nil {
		logger.Critical(fmt.Sprintf("Error inicializando ajustes: %v", err), "Main")
		os.Exit(1)
	}

	// Initialize the audit log
	auditLog, err := audit.Open(filepath.Join(cfg.LogsDir, "moderation.log"))
	if err != nil {
		logger.Critical(fmt.Sprintf("Error abriendo el registro de moderación: %v", err), "Main")
		os.Exit(1)
	}
	defer auditLog.Close()

	// Initialize Discord client
	discordClient, err := discord.Init(cfg.BotToken, discord.PlatformOptions{})
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}
	discordClient.DevGuildID = cfg.DevGuildID

	svc := moderation.NewService(discordClient.Platform, ledger, settingsStore, sched, auditLog, moderation.Options{
		MuteRoleName:       cfg.MuteRoleName,
		DefaultLogChannel:  cfg.LogChannel,
		DefaultBanDuration: cfg.DefaultBanDuration,
		PlatformTimeout:    cfg.PlatformTimeout,
		AppealURL:          cfg.AppealURL,
	})
	storageStatus := storage.StatusReporter{Backend: backend}

	// Register commands and events
	commands.RegisterAll(discordClient, svc, storageStatus)
	events.RegisterAll(discordClient, svc)

	// Initialize web server
	webServer, err := web.Init(cfg.LogsWebServerHook, cfg.WebAllowedHosts)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creando el servidor web: %v", err), "Main")
		os.Exit(1)
	}
	feed := web.NewFeed(webServer.CheckOrigin)
	auditLog.AddSink(feed)
	web.SetupAPIRoutes(webServer, web.Deps{
		Bot:       discordClient,
		Storage:   storageStatus,
		Settings:  settingsStore,
		Warnings:  ledger,
		Actions:   sched,
		Audit:     auditLog,
		Feed:      feed,
		StartTime: time.Now(),
		Token:     cfg.WebAPIToken,
	})
	webServer.StartAsync(cfg.Port)

	// Initialize MQTT
	var mqttClient *mqtt.MqttCommunicator
	if cfg.MQTTEnabled {
		mqttClientID := "pancymodbot"
		if !cfg.IsProd() {
			mqttClientID = "pancymodbot_canary"
		}
		mqttClient = mqtt.Init(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, mqttClientID)
		auditLog.AddSink(mqtt.NewAuditSink(mqttClient))
		mqttClient.RegisterStatusHandler(func(ctx context.Context) (mqtt.Status, error) {
			pending, err := sched.Pending(ctx)
			if err != nil {
				return mqtt.Status{}, err
			}
			status, _ := storageStatus.Status(ctx)
			return mqtt.Status{
				BotReady:       discordClient.IsReady(),
				Guilds:         discordClient.GuildCount(),
				PendingActions: len(pending),
				Storage:        status,
				StartedAt:      discordClient.StartTime,
			}, nil
		})
	}

	shutdown = func() {
		sched.Stop()

		stopCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := webServer.Shutdown(stopCtx); err != nil {
			logger.Error(fmt.Sprintf("Error deteniendo el servidor web: %v", err), "Main")
		}
		if err := discordClient.Stop(); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando la sesión de Discord: %v", err), "Main")
		}
		if mqttClient != nil {
			mqttClient.Destroy()
		}
		if mongoBackend != nil {
			if err := mongoBackend.Disconnect(stopCtx); err != nil {
				logger.Error(fmt.Sprintf("Error desconectando la base de datos: %v", err), "Main")
			}
		}
	}

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Recover pending actions; overdue ones fire before Start returns
	if err := sched.Start(ctx, svc); err != nil {
		logger.Critical(fmt.Sprintf("Error recuperando acciones pendientes: %v", err), "Main")
		shutdown()
		os.Exit(1)
	}

	logger.Success("PancyModBot iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando PancyModBot...", "Main")
	shutdown()
}

// openStorage opens the configured backend. The Mongo backend is also returned
// so it can be disconnected on shutdown.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Backend, *storage.MongoBackend, error) {
	if cfg.UsesMongo() {
		logger.Info("Usando MongoDB como almacenamiento", "Main")
		mb, err := storage.ConnectMongo(ctx, cfg.MongoDBURL, cfg.DBName)
		if err != nil {
			return nil, nil, err
		}
		return mb, mb, nil
	}

	logger.Info(fmt.Sprintf("Usando archivos JSON en %s", cfg.DataDir), "Main")
	fb, err := storage.NewFileBackend(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	return fb, nil, nil
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
