// Package moderation implements the moderation verbs: it records warnings,
// applies escalations, talks to the platform and schedules reversals.
package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/audit"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/metrics"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/scheduler"
	"github.com/PancyStudios/PancyModBot/pkg/settings"
	"github.com/PancyStudios/PancyModBot/pkg/warnings"
)

// DefaultReason is stored when the moderator gives none.
const DefaultReason = "Sin razón especificada"

// Member identifies a user taking part in a request.
type Member struct {
	ID   string
	Name string
}

func (m Member) subject() *audit.Subject {
	return &audit.Subject{ID: m.ID, Name: m.Name}
}

// Mention renders the platform mention for the member.
func (m Member) Mention() string {
	return "<@" + m.ID + ">"
}

// Request carries the context common to every verb.
type Request struct {
	GuildID   string
	ChannelID string
	Actor     Member
	Target    Member
	Reason    string
}

func (r Request) reason() string {
	if r.Reason == "" {
		return DefaultReason
	}
	return r.Reason
}

// Options configures a Service. Zero values fall back to the defaults.
type Options struct {
	MuteRoleName       string
	DefaultLogChannel  string
	DefaultBanDuration time.Duration
	PlatformTimeout    time.Duration
	AppealURL          string
	Now                func() time.Time
}

// Service orchestrates the moderation verbs. It is also the scheduler's Handler.
type Service struct {
	platform  Platform
	ledger    *warnings.Ledger
	settings  *settings.Store
	scheduler *scheduler.Scheduler
	audit     *audit.Log
	opts      Options
}

var _ scheduler.Handler = (*Service)(nil)

// NewService wires the service. Nothing here talks to the platform yet.
func NewService(p Platform, ledger *warnings.Ledger, store *settings.Store, sched *scheduler.Scheduler, log *audit.Log, opts Options) *Service {
	if opts.MuteRoleName == "" {
		opts.MuteRoleName = "Muted"
	}
	if opts.DefaultBanDuration <= 0 {
		opts.DefaultBanDuration = 24 * time.Hour
	}
	if opts.PlatformTimeout <= 0 {
		opts.PlatformTimeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		platform:  p,
		ledger:    ledger,
		settings:  store,
		scheduler: sched,
		audit:     log,
		opts:      opts,
	}
}

// Scheduler exposes the deferred action scheduler.
func (s *Service) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

// Ledger exposes the warning ledger.
func (s *Service) Ledger() *warnings.Ledger {
	return s.ledger
}

// Settings returns the effective settings for a guild.
func (s *Service) Settings(ctx context.Context, guildID string) (models.EffectiveSettings, error) {
	return s.settings.Get(ctx, guildID)
}

// platformCtx bounds a single platform call.
func (s *Service) platformCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.PlatformTimeout)
}

func (s *Service) fail(op string, err error) error {
	metrics.ModerationErrors.WithLabelValues(op).Inc()
	logger.Debug(fmt.Sprintf("%s falló: %v", op, err), "Moderation")
	return err
}

func (s *Service) newRecord(req Request, action audit.Action) audit.Record {
	r := audit.Record{
		Time:    s.opts.Now().UTC(),
		GuildID: req.GuildID,
		Action:  action,
	}
	if req.Target.ID != "" {
		r.Target = req.Target.subject()
	}
	if req.Actor.ID != "" {
		r.Actor = req.Actor.subject()
	}
	return r
}

// record appends to the audit log, then mirrors the line to the guild's log
// channel. Both are best effort once the action itself succeeded.
func (s *Service) record(ctx context.Context, r audit.Record) {
	if err := s.audit.Append(ctx, r); err != nil {
		logger.Error(fmt.Sprintf("No se pudo escribir el registro de auditoría: %v", err), "Moderation")
	}

	channelID, ok := s.logChannel(ctx, r.GuildID)
	if !ok {
		return
	}
	pctx, cancel := s.platformCtx(ctx)
	defer cancel()
	if err := s.platform.SendMessage(pctx, channelID, r.String()); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo enviar el registro al canal %s: %v", channelID, err), "Moderation")
	}
}

// logChannel resolves the per-guild override first, then the configured
// default tried as an ID and then as a name.
func (s *Service) logChannel(ctx context.Context, guildID string) (string, bool) {
	candidates := make([]string, 0, 2)
	if eff, err := s.settings.Get(ctx, guildID); err == nil && eff.LogChannelID != "" {
		candidates = append(candidates, eff.LogChannelID)
	}
	if s.opts.DefaultLogChannel != "" {
		candidates = append(candidates, s.opts.DefaultLogChannel)
	}

	for _, c := range candidates {
		pctx, cancel := s.platformCtx(ctx)
		id, ok, err := s.platform.ResolveChannel(pctx, guildID, c)
		cancel()
		if err != nil {
			logger.Debug(fmt.Sprintf("No se pudo resolver el canal de logs '%s': %v", c, err), "Moderation")
			continue
		}
		if ok {
			return id, true
		}
	}
	return "", false
}

// dm sends a direct message and swallows any failure.
func (s *Service) dm(ctx context.Context, userID, content string) {
	pctx, cancel := s.platformCtx(ctx)
	defer cancel()
	if err := s.platform.SendDirectMessage(pctx, userID, content); err != nil {
		logger.Debug(fmt.Sprintf("No se pudo enviar DM a %s: %v", userID, err), "Moderation")
	}
}

func (s *Service) guildName(ctx context.Context, guildID string) string {
	pctx, cancel := s.platformCtx(ctx)
	defer cancel()
	name, err := s.platform.GuildName(pctx, guildID)
	if err != nil || name == "" {
		return guildID
	}
	return name
}

func (s *Service) appendAppeal(text string) string {
	if s.opts.AppealURL == "" {
		return text
	}
	return text + " Para apelar visita " + s.opts.AppealURL
}

// muteRole returns the mute role ID, creating the role when needed.
func (s *Service) muteRole(ctx context.Context, guildID string) (string, error) {
	pctx, cancel := s.platformCtx(ctx)
	defer cancel()
	roleID, err := s.platform.EnsureRole(pctx, guildID, s.opts.MuteRoleName)
	if err != nil {
		return "", platformFailure("ensure mute role", err)
	}
	return roleID, nil
}

// supersede cancels earlier pending reversals of kind for the target.
func (s *Service) supersede(ctx context.Context, guildID, targetID string, kind models.ActionKind) {
	n, err := s.scheduler.CancelMatching(ctx, guildID, targetID, kind)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudieron cancelar acciones %s previas de %s: %v", kind, targetID, err), "Moderation")
		return
	}
	if n > 0 {
		logger.Debug(fmt.Sprintf("Canceladas %d acciones %s previas de %s", n, kind, targetID), "Moderation")
	}
}

func (s *Service) schedule(ctx context.Context, req Request, kind models.ActionKind, seconds int64) (models.DeferredAction, error) {
	return s.scheduler.Schedule(ctx, models.DeferredAction{
		GuildID:   req.GuildID,
		TargetID:  req.Target.ID,
		ChannelID: req.ChannelID,
		Kind:      kind,
		DueAt:     s.opts.Now().Add(time.Duration(seconds) * time.Second),
	})
}
