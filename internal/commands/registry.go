package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps command names and aliases to commands and knows which
// command runs when none is named.
type Registry struct {
	mu          sync.RWMutex
	byName      map[string]Command
	defaultName string
}

// NewRegistry creates an empty registry. defaultName is the command run
// without arguments; it must be registered before Default is called.
func NewRegistry(defaultName string) *Registry {
	return &Registry{byName: make(map[string]Command), defaultName: defaultName}
}

// Register adds c under its name and aliases.
// A name taken by another command is an error.
func (r *Registry) Register(c Command) error {
	if c.Name() == "" {
		return fmt.Errorf("command has no name: %T", c)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{c.Name()}, c.Aliases()...)
	for _, key := range keys {
		if prev, ok := r.byName[key]; ok {
			return fmt.Errorf("%q of %s already belongs to %s", key, c.Name(), prev.Name())
		}
	}
	for _, key := range keys {
		r.byName[key] = c
	}
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[name]
	return cmd, ok
}

// Default returns the command run when no command is named.
func (r *Registry) Default() (Command, bool) {
	return r.Find(r.defaultName)
}

// All returns each command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cmds []Command
	for key, cmd := range r.byName {
		if key == cmd.Name() {
			cmds = append(cmds, cmd)
		}
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
	return cmds
}

// Section is a help heading with the commands sharing one Need.
type Section struct {
	Title    string
	Commands []Command
}

var sectionTitles = []struct {
	need  Need
	title string
}{
	{NeedSession, "Tasks (sign-in required)"},
	{NeedStores, "Account"},
	{NeedAPI, "Dashboard"},
	{NeedNothing, "Other"},
}

// Sections groups All by Need, tasks first. Empty sections are left out.
func (r *Registry) Sections() []Section {
	byNeed := make(map[Need][]Command)
	for _, cmd := range r.All() {
		byNeed[cmd.Needs()] = append(byNeed[cmd.Needs()], cmd)
	}

	var sections []Section
	for _, st := range sectionTitles {
		if cmds := byNeed[st.need]; len(cmds) > 0 {
			sections = append(sections, Section{Title: st.title, Commands: cmds})
		}
	}
	return sections
}

// DefaultRegistry holds the commands registered by this package.
var DefaultRegistry = NewRegistry("board")

// Register adds a command to the default registry and panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
