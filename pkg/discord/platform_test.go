package discord

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/PancyStudios/PancyModBot/pkg/moderation"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponse struct {
	status int
	body   string
}

// fakeAPI answers discordgo REST calls by "METHOD /path".
type fakeAPI struct {
	mu      sync.Mutex
	routes  map[string]fakeResponse
	calls   []string
	headers map[string]http.Header
}

func (f *fakeAPI) RoundTrip(req *http.Request) (*http.Response, error) {
	p := req.URL.Path
	if i := strings.Index(p, "/api/v"); i >= 0 {
		p = p[i+len("/api/v"):]
		p = p[strings.Index(p, "/"):]
	}
	key := req.Method + " " + p

	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.headers[key] = req.Header.Clone()
	res, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		res = fakeResponse{http.StatusNotFound, `{"code":0,"message":"404: Not Found"}`}
	}
	return &http.Response{
		StatusCode: res.status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(res.body)),
		Request:    req,
	}, nil
}

func (f *fakeAPI) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func newFakePlatform(t *testing.T, routes map[string]fakeResponse) (*Platform, *fakeAPI) {
	t.Helper()
	session, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	session.StateEnabled = false

	api := &fakeAPI{routes: routes, headers: map[string]http.Header{}}
	session.Client = &http.Client{Transport: api}
	return NewPlatform(session, PlatformOptions{}), api
}

const channelsJSON = `[
	{"id":"10","name":"general","type":0,"guild_id":"g1"},
	{"id":"11","name":"logs","type":0,"guild_id":"g1"},
	{"id":"12","name":"Voz","type":2,"guild_id":"g1"}
]`

func TestMapError(t *testing.T) {
	unknown := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMember, Message: "Unknown Member"}}
	forbidden := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions, Message: "Missing Permissions"}}
	bare404 := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	other := errors.New("connection reset")

	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(unknown), moderation.ErrTargetNotFound)
	assert.ErrorIs(t, mapError(bare404), moderation.ErrTargetNotFound)
	assert.NotErrorIs(t, mapError(forbidden), moderation.ErrTargetNotFound)
	assert.Same(t, forbidden, mapError(forbidden))
	assert.Same(t, other, mapError(other))
}

func TestPlatformUnknownTargets(t *testing.T) {
	p, _ := newFakePlatform(t, map[string]fakeResponse{
		"DELETE /guilds/g1/members/100": {http.StatusNotFound, `{"code":10007,"message":"Unknown Member"}`},
		"DELETE /guilds/g1/bans/100":    {http.StatusNotFound, `{"code":10026,"message":"Unknown Ban"}`},
		"GET /users/999":                {http.StatusNotFound, `{"code":10013,"message":"Unknown User"}`},
		"PUT /guilds/g1/bans/300":       {http.StatusForbidden, `{"code":50013,"message":"Missing Permissions"}`},
	})
	ctx := context.Background()

	assert.ErrorIs(t, p.KickMember(ctx, "g1", "100", "spam"), moderation.ErrTargetNotFound)
	assert.ErrorIs(t, p.UnbanUser(ctx, "g1", "100", "fin"), moderation.ErrTargetNotFound)
	_, err := p.UserName(ctx, "999")
	assert.ErrorIs(t, err, moderation.ErrTargetNotFound)

	err = p.BanMember(ctx, "g1", "300", "spam")
	require.Error(t, err)
	assert.NotErrorIs(t, err, moderation.ErrTargetNotFound)
}

func TestPlatformGrantRoleSendsAuditReason(t *testing.T) {
	p, api := newFakePlatform(t, map[string]fakeResponse{
		"PUT /guilds/g1/members/100/roles/r1": {http.StatusNoContent, ""},
	})

	require.NoError(t, p.GrantRole(context.Background(), "g1", "100", "r1", "Mute por 10m"))
	assert.NotEmpty(t, api.headers["PUT /guilds/g1/members/100/roles/r1"].Get("X-Audit-Log-Reason"))
}

func TestPlatformResolveChannel(t *testing.T) {
	p, _ := newFakePlatform(t, map[string]fakeResponse{
		"GET /guilds/g1/channels": {http.StatusOK, channelsJSON},
	})
	ctx := context.Background()

	tests := []struct {
		ref    string
		wantID string
		found  bool
	}{
		{"11", "11", true},
		{"logs", "11", true},
		{"#General", "10", true},
		{"Voz", "", false},
		{"999", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		id, found, err := p.ResolveChannel(ctx, "g1", tt.ref)
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.found, found, tt.ref)
		assert.Equal(t, tt.wantID, id, tt.ref)
	}
}

func TestPlatformEnsureRole(t *testing.T) {
	t.Run("existing role", func(t *testing.T) {
		p, api := newFakePlatform(t, map[string]fakeResponse{
			"GET /guilds/g1/roles": {http.StatusOK, `[{"id":"r9","name":"Muted"}]`},
		})
		id, err := p.EnsureRole(context.Background(), "g1", "Muted")
		require.NoError(t, err)
		assert.Equal(t, "r9", id)
		assert.Zero(t, api.count("POST "))
	})

	t.Run("creates and denies on every channel", func(t *testing.T) {
		p, api := newFakePlatform(t, map[string]fakeResponse{
			"GET /guilds/g1/roles":            {http.StatusOK, `[]`},
			"POST /guilds/g1/roles":           {http.StatusOK, `{"id":"r1","name":"Muted"}`},
			"GET /guilds/g1/channels":         {http.StatusOK, channelsJSON},
			"PUT /channels/10/permissions/r1": {http.StatusNoContent, ""},
			"PUT /channels/11/permissions/r1": {http.StatusForbidden, `{"code":50013,"message":"Missing Permissions"}`},
			"PUT /channels/12/permissions/r1": {http.StatusNoContent, ""},
		})
		id, err := p.EnsureRole(context.Background(), "g1", "Muted")
		require.NoError(t, err)
		assert.Equal(t, "r1", id)
		assert.Equal(t, 1, api.count("POST /guilds/g1/roles"))
		assert.Equal(t, 3, api.count("PUT /channels/"))
	})
}

func TestPlatformHasRole(t *testing.T) {
	p, _ := newFakePlatform(t, map[string]fakeResponse{
		"GET /guilds/g1/members/100": {http.StatusOK, `{"user":{"id":"100","username":"pepe"},"roles":["r1"]}`},
		"GET /guilds/g1/members/400": {http.StatusNotFound, `{"code":10007,"message":"Unknown Member"}`},
	})
	ctx := context.Background()

	has, err := p.HasRole(ctx, "g1", "100", "r1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = p.HasRole(ctx, "g1", "100", "r2")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = p.HasRole(ctx, "g1", "400", "r1")
	assert.ErrorIs(t, err, moderation.ErrTargetNotFound)
}
