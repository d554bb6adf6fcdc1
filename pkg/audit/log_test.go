package audit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	got []Record
	err error
}

func (m *memorySink) Publish(_ context.Context, r Record) error {
	m.got = append(m.got, r)
	return m.err
}

var at = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func TestRecordString(t *testing.T) {
	r := Record{
		Time:    at,
		GuildID: "g1",
		Action:  ActionWarn,
		Actor:   &Subject{ID: "2", Name: "mod"},
		Target:  &Subject{ID: "1", Name: "pepe"},
		Reason:  "spam",
	}.With("Total", "2")

	assert.Equal(t, "[2025-03-04 05:06:07 UTC] WARN -> User: pepe (1) | By: mod (2) | Reason: spam | Total: 2", r.String())
}

func TestRecordStringFlattensNewlines(t *testing.T) {
	r := Record{
		Time:   at,
		Action: ActionSay,
		Reason: "linea uno\r\nlinea dos",
	}.With("Content", "hola\nmundo\rfin")

	got := r.String()
	assert.NotContains(t, got, "\n")
	assert.NotContains(t, got, "\r")
	assert.Equal(t, "[2025-03-04 05:06:07 UTC] SAY -> Reason: linea uno linea dos | Content: hola mundo fin", got)
}

func TestRecordWithDoesNotAlias(t *testing.T) {
	base := Record{Action: ActionBan, Details: make([]Detail, 0, 4)}
	a := base.With("Time", "1h")
	b := base.With("Time", "permanent")
	assert.Equal(t, "1h", a.Details[0].Value)
	assert.Equal(t, "permanent", b.Details[0].Value)
}

func TestAppendWritesLinesAndPublishes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "moderation.log")
	ok := &memorySink{}
	broken := &memorySink{err: errors.New("broker down")}

	l, err := Open(path, broken, ok)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, l.Append(ctx, Record{Time: at, GuildID: "g1", Action: ActionKick, Target: &Subject{ID: "1"}}))
	require.NoError(t, l.Append(ctx, Record{Time: at, GuildID: "g2", Action: ActionUnban, Target: &Subject{ID: "3"}}))
	require.NoError(t, l.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "KICK -> User: 1")
	assert.Contains(t, lines[1], "UNBAN -> User: 3")

	// a failing sink does not stop the others
	assert.Len(t, ok.got, 2)
}

func TestRecent(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "moderation.log"))
	require.NoError(t, err)
	defer l.Close()

	ctx := context.Background()
	for i := 0; i < recentSize+5; i++ {
		guild := "g1"
		if i%2 == 1 {
			guild = "g2"
		}
		require.NoError(t, l.Append(ctx, Record{Time: at.Add(time.Duration(i) * time.Second), GuildID: guild, Action: ActionWarn}))
	}

	all := l.Recent("", 1000)
	assert.Len(t, all, recentSize)
	assert.True(t, all[0].Time.Before(all[len(all)-1].Time))

	g2 := l.Recent("g2", 3)
	require.Len(t, g2, 3)
	for _, r := range g2 {
		assert.Equal(t, "g2", r.GuildID)
	}
}
