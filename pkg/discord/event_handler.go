// Package discord provides the event handler for managing Discord events.
package discord

import (
	"sync"

	"github.com/PancyStudios/PancyModBot/pkg/anticrash"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// EventHandler manages event registration
type EventHandler struct {
	client *ExtendedClient
	events []interface{}
	mu     sync.RWMutex
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(client *ExtendedClient) *EventHandler {
	return &EventHandler{
		client: client,
		events: make([]interface{}, 0),
	}
}

// RegisterEvent adds an event handler to the Discord session
func (eh *EventHandler) RegisterEvent(handler interface{}) {
	eh.client.Session.AddHandler(handler)
	eh.mu.Lock()
	eh.events = append(eh.events, handler)
	eh.mu.Unlock()
}

// Count returns how many handlers were registered.
func (eh *EventHandler) Count() int {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	return len(eh.events)
}

// ReadyHandler is called when the bot is ready
type ReadyHandler func(s *discordgo.Session, r *discordgo.Ready)

// GuildMemberAddHandler is called when a member joins a guild
type GuildMemberAddHandler func(s *discordgo.Session, m *discordgo.GuildMemberAdd)

// GuildBanRemoveHandler is called when a ban is lifted, by the bot or anyone else
type GuildBanRemoveHandler func(s *discordgo.Session, b *discordgo.GuildBanRemove)

// OnReady registers a ready event handler
func (eh *EventHandler) OnReady(handler ReadyHandler) {
	eh.RegisterEvent(func(s *discordgo.Session, r *discordgo.Ready) {
		defer anticrash.Recover()
		handler(s, r)
	})
	logger.Debug("Evento 'Ready' registrado", "EventHandler")
}

// OnGuildMemberAdd registers a guild member add event handler
func (eh *EventHandler) OnGuildMemberAdd(handler GuildMemberAddHandler) {
	eh.RegisterEvent(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		defer anticrash.Recover()
		handler(s, m)
	})
	logger.Debug("Evento 'GuildMemberAdd' registrado", "EventHandler")
}

// OnGuildBanRemove registers a guild ban remove event handler
func (eh *EventHandler) OnGuildBanRemove(handler GuildBanRemoveHandler) {
	eh.RegisterEvent(func(s *discordgo.Session, b *discordgo.GuildBanRemove) {
		defer anticrash.Recover()
		handler(s, b)
	})
	logger.Debug("Evento 'GuildBanRemove' registrado", "EventHandler")
}
