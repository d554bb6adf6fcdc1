// Package warnings keeps per-guild, per-member warning counts.
package warnings

import (
	"context"
	"errors"

	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/storage"
)

// DocumentName is the stored document holding all counts.
const DocumentName = "warnings"

// ErrNone is returned by Remove when the member has no warnings left.
var ErrNone = errors.New("no warnings")

// Ledger mutates warning counts through a single storage document.
type Ledger struct {
	doc *storage.Document[models.Warnings]
}

// NewLedger binds the ledger to backend.
func NewLedger(backend storage.Backend) *Ledger {
	return &Ledger{doc: storage.NewDocument(backend, DocumentName, func() models.Warnings {
		return models.Warnings{}
	})}
}

// Ensure creates the warnings document on first run.
func (l *Ledger) Ensure(ctx context.Context) error {
	return l.doc.Ensure(ctx)
}

// Increment adds one warning and returns the new count.
func (l *Ledger) Increment(ctx context.Context, guildID, memberID string) (int, error) {
	return l.add(ctx, guildID, memberID, 1)
}

// Decrement removes one warning, flooring at zero, and returns the new count.
func (l *Ledger) Decrement(ctx context.Context, guildID, memberID string) (int, error) {
	return l.add(ctx, guildID, memberID, -1)
}

// Remove takes one warning away and returns the new count. The zero check runs
// under the document lock; nothing is written on ErrNone.
func (l *Ledger) Remove(ctx context.Context, guildID, memberID string) (int, error) {
	var count int
	err := l.doc.Update(ctx, func(w *models.Warnings) error {
		members := (*w)[guildID]
		if members[memberID] <= 0 {
			return ErrNone
		}
		count = members[memberID] - 1
		members[memberID] = count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Get returns the current count, zero when the member has none.
func (l *Ledger) Get(ctx context.Context, guildID, memberID string) (int, error) {
	w, err := l.doc.Read(ctx)
	if err != nil {
		return 0, err
	}
	return w.Count(guildID, memberID), nil
}

// Guild returns a copy of every member count in a guild.
func (l *Ledger) Guild(ctx context.Context, guildID string) (map[string]int, error) {
	w, err := l.doc.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(w[guildID]))
	for member, count := range w[guildID] {
		out[member] = count
	}
	return out, nil
}

func (l *Ledger) add(ctx context.Context, guildID, memberID string, delta int) (int, error) {
	var count int
	err := l.doc.Update(ctx, func(w *models.Warnings) error {
		if *w == nil {
			*w = models.Warnings{}
		}
		members := (*w)[guildID]
		if members == nil {
			members = map[string]int{}
			(*w)[guildID] = members
		}
		count = max(0, members[memberID]+delta)
		members[memberID] = count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
