package commands_test

import (
	"strings"
	"testing"

	"taskboard/internal/commands"
)

func TestRegistry_FindByAlias(t *testing.T) {
	reg := commands.NewRegistry("board")
	if err := reg.Register(&commands.BoardCmd{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	cmd, ok := reg.Find("ls")
	if !ok || cmd.Name() != "board" {
		t.Errorf("expected ls to find board, got %v (ok=%v)", cmd, ok)
	}
	if def, ok := reg.Default(); !ok || def.Name() != "board" {
		t.Errorf("expected board as default, got %v (ok=%v)", def, ok)
	}
	if got := len(reg.All()); got != 1 {
		t.Errorf("expected aliases listed once, got %d commands", got)
	}
}

func TestRegistry_NameClash(t *testing.T) {
	reg := commands.NewRegistry("board")
	if err := reg.Register(&commands.BoardCmd{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err := reg.Register(&commands.BoardCmd{})
	if err == nil {
		t.Fatal("expected error for duplicate name")
	}
	if !strings.Contains(err.Error(), "already belongs to board") {
		t.Errorf("unexpected error %q", err)
	}
}

func TestRegistry_DefaultMissing(t *testing.T) {
	reg := commands.NewRegistry("board")
	if _, ok := reg.Default(); ok {
		t.Error("expected no default before board is registered")
	}
}

func TestRegistry_SectionsByNeed(t *testing.T) {
	reg := commands.NewRegistry("board")
	for _, c := range []commands.Command{
		&commands.VersionCmd{},
		&commands.ServeCmd{},
		&commands.LoginCmd{},
		&commands.RmCmd{},
		&commands.BoardCmd{},
	} {
		if err := reg.Register(c); err != nil {
			t.Fatalf("Register %s failed: %v", c.Name(), err)
		}
	}

	sections := reg.Sections()
	want := []struct {
		title string
		names string
	}{
		{"Tasks (sign-in required)", "board rm"},
		{"Account", "login"},
		{"Dashboard", "serve"},
		{"Other", "version"},
	}
	if len(sections) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(sections))
	}
	for i, w := range want {
		var names []string
		for _, c := range sections[i].Commands {
			names = append(names, c.Name())
		}
		if sections[i].Title != w.title || strings.Join(names, " ") != w.names {
			t.Errorf("section %d: expected %s [%s], got %s %v", i, w.title, w.names, sections[i].Title, names)
		}
	}
}

func TestNeeds(t *testing.T) {
	cases := map[string]commands.Need{
		"board":    commands.NeedSession,
		"whoami":   commands.NeedSession,
		"login":    commands.NeedStores,
		"logout":   commands.NeedStores,
		"register": commands.NeedStores,
		"serve":    commands.NeedAPI,
		"init":     commands.NeedNothing,
		"help":     commands.NeedNothing,
	}
	for name, want := range cases {
		cmd, ok := commands.DefaultRegistry.Find(name)
		if !ok {
			t.Errorf("%s not registered", name)
			continue
		}
		if got := cmd.Needs(); got != want {
			t.Errorf("%s: expected need %d, got %d", name, want, got)
		}
	}
	if commands.NeedNothing.UsesBackend() || !commands.NeedAPI.UsesBackend() {
		t.Error("only NeedNothing skips the backend")
	}
}
