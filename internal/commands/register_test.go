package commands

import (
	"testing"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
)

func newTestClient(t *testing.T) *discord.ExtendedClient {
	t.Helper()
	c, err := discord.NewClient("test-token", discord.PlatformOptions{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	RegisterAll(c, nil, nil)
	return c
}

// TestRegisterAllCapabilities checks every dispatch key and the capability it demands
func TestRegisterAllCapabilities(t *testing.T) {
	c := newTestClient(t)

	tests := []struct {
		name       string
		capability permissions.Capability
	}{
		{"ping", permissions.None},
		{"help", permissions.None},
		{"status", permissions.None},
		{"say", permissions.Administer},
		{"warn", permissions.Moderate},
		{"unwarn", permissions.Moderate},
		{"warnings", permissions.Moderate},
		{"mute", permissions.Moderate},
		{"unmute", permissions.Moderate},
		{"ban", permissions.Moderate},
		{"unban", permissions.Moderate},
		{"kick", permissions.Moderate},
		{"settings.autopunish", permissions.Administer},
		{"settings.logchannel", permissions.Administer},
		{"settings.show", permissions.Moderate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := c.Commands.Get(tt.name)
			if !ok {
				t.Fatalf("command %q not registered", tt.name)
			}
			if cmd.Capability != tt.capability {
				t.Errorf("Capability = %v, want %v", cmd.Capability, tt.capability)
			}
		})
	}

	if got, want := c.Commands.Size(), len(tests); got != want {
		t.Errorf("Commands.Size() = %d, want %d", got, want)
	}
}

// TestRegisterAllApplicationCommands checks what is sent to Discord
func TestRegisterAllApplicationCommands(t *testing.T) {
	c := newTestClient(t)

	byName := map[string]bool{}
	for _, cmd := range c.CommandHandler.GlobalCommands() {
		if byName[cmd.Name] {
			t.Errorf("duplicate application command %q", cmd.Name)
		}
		byName[cmd.Name] = true

		if cmd.DMPermission == nil || *cmd.DMPermission {
			t.Errorf("%s: commands must be guild only", cmd.Name)
		}
	}

	for _, name := range []string{"ping", "say", "help", "status", "warn", "unwarn", "warnings", "mute", "unmute", "ban", "unban", "kick", "settings"} {
		if !byName[name] {
			t.Errorf("application command %q missing", name)
		}
	}
	if len(byName) != 13 {
		t.Errorf("got %d application commands, want 13", len(byName))
	}
}

// TestRequiredOptions guards the option names the handlers read
func TestRequiredOptions(t *testing.T) {
	c := newTestClient(t)

	required := map[string][]string{
		"warn":   {"usuario"},
		"mute":   {"usuario", "duracion"},
		"ban":    {"usuario"},
		"unban":  {"user_id"},
		"kick":   {"usuario"},
		"say":    {"mensaje"},
		"unwarn": {"usuario"},
	}

	for name, want := range required {
		cmd, ok := c.Commands.Get(name)
		if !ok {
			t.Fatalf("command %q not registered", name)
		}
		got := map[string]bool{}
		for _, opt := range cmd.Options {
			if opt.Required {
				got[opt.Name] = true
			}
		}
		if len(got) != len(want) {
			t.Errorf("%s: %d required options, want %d", name, len(got), len(want))
		}
		for _, opt := range want {
			if !got[opt] {
				t.Errorf("%s: option %q should be required", name, opt)
			}
		}
	}
}
