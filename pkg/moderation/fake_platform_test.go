package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type sent struct {
	To      string
	Content string
}

// fakePlatform is an in-memory guild "g1".
type fakePlatform struct {
	mu sync.Mutex

	guildName   string
	members     map[string]bool
	users       map[string]string
	roles       map[string]string // name -> id
	memberRoles map[string]map[string]bool
	banned      map[string]bool
	channels    map[string]string // id or name -> id

	messages []sent
	dms      []sent
	calls    []string

	failGrant error
	failBan   error
	failKick  error
	failDM    error
	failSend  error
	blockBan  bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		guildName:   "Pancy Server",
		members:     map[string]bool{"100": true, "200": true, "300": true},
		users:       map[string]string{"100": "pepe", "200": "mod", "300": "ana", "400": "exmiembro"},
		roles:       map[string]string{},
		memberRoles: map[string]map[string]bool{},
		banned:      map[string]bool{},
		channels:    map[string]string{"c-general": "c-general", "general": "c-general", "c-logs": "c-logs", "logs": "c-logs"},
	}
}

func (f *fakePlatform) log(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakePlatform) SendMessage(_ context.Context, channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("send:" + channelID)
	if f.failSend != nil {
		return f.failSend
	}
	f.messages = append(f.messages, sent{To: channelID, Content: content})
	return nil
}

func (f *fakePlatform) SendDirectMessage(_ context.Context, userID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("dm:" + userID)
	if f.failDM != nil {
		return f.failDM
	}
	f.dms = append(f.dms, sent{To: userID, Content: content})
	return nil
}

func (f *fakePlatform) EnsureRole(_ context.Context, _, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.roles[name]; ok {
		return id, nil
	}
	id := fmt.Sprintf("role-%d", len(f.roles)+1)
	f.roles[name] = id
	f.log("create-role:" + name)
	return id, nil
}

func (f *fakePlatform) FindRole(_ context.Context, _, name string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.roles[name]
	return id, ok, nil
}

func (f *fakePlatform) HasRole(_ context.Context, _, userID, roleID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.members[userID] {
		return false, ErrTargetNotFound
	}
	return f.memberRoles[userID][roleID], nil
}

func (f *fakePlatform) GrantRole(_ context.Context, _, userID, roleID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("grant:" + userID)
	if f.failGrant != nil {
		return f.failGrant
	}
	if !f.members[userID] {
		return ErrTargetNotFound
	}
	if f.memberRoles[userID] == nil {
		f.memberRoles[userID] = map[string]bool{}
	}
	f.memberRoles[userID][roleID] = true
	return nil
}

func (f *fakePlatform) RevokeRole(_ context.Context, _, userID, roleID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("revoke:" + userID)
	if !f.members[userID] {
		return ErrTargetNotFound
	}
	delete(f.memberRoles[userID], roleID)
	return nil
}

func (f *fakePlatform) BanMember(ctx context.Context, _, userID, _ string) error {
	if f.blockBan {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("ban:" + userID)
	if f.failBan != nil {
		return f.failBan
	}
	f.banned[userID] = true
	delete(f.members, userID)
	return nil
}

func (f *fakePlatform) UnbanUser(_ context.Context, _, userID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("unban:" + userID)
	if !f.banned[userID] {
		return ErrTargetNotFound
	}
	delete(f.banned, userID)
	return nil
}

func (f *fakePlatform) KickMember(_ context.Context, _, userID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("kick:" + userID)
	if f.failKick != nil {
		return f.failKick
	}
	if !f.members[userID] {
		return ErrTargetNotFound
	}
	delete(f.members, userID)
	return nil
}

func (f *fakePlatform) ResolveChannel(_ context.Context, _, idOrName string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.channels[idOrName]
	return id, ok, nil
}

func (f *fakePlatform) GuildName(context.Context, string) (string, error) {
	return f.guildName, nil
}

func (f *fakePlatform) UserName(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.users[userID]
	if !ok {
		return "", ErrTargetNotFound
	}
	return name, nil
}

func (f *fakePlatform) muted(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.roles["Muted"]
	return ok && f.memberRoles[userID][id]
}

func (f *fakePlatform) isBanned(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banned[userID]
}

func (f *fakePlatform) messagesTo(channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.messages {
		if m.To == channelID {
			out = append(out, m.Content)
		}
	}
	return out
}

func (f *fakePlatform) callIndex(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.calls {
		if c == call {
			return i
		}
	}
	return -1
}

var errForbidden = errors.New("HTTP 403 Forbidden, Missing Permissions")
