// Package web provides API routes for the web server.
package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/audit"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BotInfo reports the Discord side of the process.
type BotInfo interface {
	IsReady() bool
	GuildCount() int
}

// StorageInfo reports the storage backend health.
type StorageInfo interface {
	Status(ctx context.Context) (string, bool)
}

// SettingsReader is the read side of the settings store.
type SettingsReader interface {
	Get(ctx context.Context, guildID string) (models.EffectiveSettings, error)
}

// WarningsReader is the read side of the warning ledger.
type WarningsReader interface {
	Get(ctx context.Context, guildID, memberID string) (int, error)
	Guild(ctx context.Context, guildID string) (map[string]int, error)
}

// ActionsReader lists pending deferred actions.
type ActionsReader interface {
	Pending(ctx context.Context) ([]models.DeferredAction, error)
}

// AuditReader returns recent audit records.
type AuditReader interface {
	Recent(guildID string, n int) []audit.Record
}

// Deps are the services the API reads from. Nil members disable their routes.
type Deps struct {
	Bot       BotInfo
	Storage   StorageInfo
	Settings  SettingsReader
	Warnings  WarningsReader
	Actions   ActionsReader
	Audit     AuditReader
	Feed      *Feed
	StartTime time.Time
	// Token guards the guild data routes. Without it they are not mounted.
	Token string
}

const requestTimeout = 5 * time.Second

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, d Deps) {
	s.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.GET("/status", d.statusHandler)
	}

	if d.Token == "" {
		logger.Warn("WEB_API_TOKEN no configurado: rutas de moderacion deshabilitadas", "WebServer")
		return
	}

	data := s.Group("/api", tokenMiddleware(d.Token))
	{
		if d.Settings != nil {
			data.GET("/guilds/:guildId/settings", d.settingsHandler)
		}
		if d.Warnings != nil {
			data.GET("/guilds/:guildId/warnings", d.guildWarningsHandler)
			data.GET("/guilds/:guildId/warnings/:userId", d.warningsHandler)
		}
		if d.Actions != nil {
			data.GET("/actions", d.actionsHandler)
		}
		if d.Audit != nil {
			data.GET("/audit/recent", d.recentHandler)
		}
		if d.Feed != nil {
			data.GET("/audit/feed", d.Feed.Handle)
		}
	}
}

func internalError(c *gin.Context, route string, err error) {
	logger.Error(route+": "+err.Error(), "WebServer")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal Server Error",
		"message": "No se pudieron leer los datos.",
	})
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyModBot is running",
	})
}

// statusHandler returns the bot, storage and scheduler status
func (d Deps) statusHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	body := gin.H{"status": "ok"}

	bot := gin.H{"isOnline": false, "guilds": 0}
	if d.Bot != nil {
		bot["isOnline"] = d.Bot.IsReady()
		bot["guilds"] = d.Bot.GuildCount()
	}
	body["bot"] = bot

	if d.Storage != nil {
		status, online := d.Storage.Status(ctx)
		body["storage"] = gin.H{"status": status, "isOnline": online}
	}

	if d.Actions != nil {
		if pending, err := d.Actions.Pending(ctx); err == nil {
			body["pendingActions"] = len(pending)
		}
	}

	if !d.StartTime.IsZero() {
		body["uptime"] = time.Since(d.StartTime).Round(time.Second).String()
	}

	c.JSON(http.StatusOK, body)
}

func (d Deps) settingsHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	eff, err := d.Settings.Get(ctx, c.Param("guildId"))
	if err != nil {
		internalError(c, "settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"guildId":         c.Param("guildId"),
		"warnToMute":      eff.WarnToMute,
		"autoMuteSeconds": eff.AutoMuteSeconds,
		"warnToBan":       eff.WarnToBan,
		"logChannelId":    eff.LogChannelID,
	})
}

func (d Deps) warningsHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	count, err := d.Warnings.Get(ctx, c.Param("guildId"), c.Param("userId"))
	if err != nil {
		internalError(c, "warnings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"guildId": c.Param("guildId"),
		"userId":  c.Param("userId"),
		"count":   count,
	})
}

func (d Deps) guildWarningsHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	members, err := d.Warnings.Guild(ctx, c.Param("guildId"))
	if err != nil {
		internalError(c, "warnings", err)
		return
	}
	if members == nil {
		members = map[string]int{}
	}
	c.JSON(http.StatusOK, gin.H{
		"guildId": c.Param("guildId"),
		"members": members,
	})
}

// actionsHandler lists pending deferred actions, optionally for one guild
func (d Deps) actionsHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	pending, err := d.Actions.Pending(ctx)
	if err != nil {
		internalError(c, "actions", err)
		return
	}

	guildID := c.Query("guildId")
	out := make([]models.DeferredAction, 0, len(pending))
	for _, a := range pending {
		if guildID == "" || a.GuildID == guildID {
			out = append(out, a)
		}
	}
	c.JSON(http.StatusOK, gin.H{"actions": out, "count": len(out)})
}

func (d Deps) recentHandler(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "limit debe ser un número positivo.",
			})
			return
		}
		limit = n
	}

	records := d.Audit.Recent(c.Query("guildId"), limit)
	if records == nil {
		records = []audit.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}
