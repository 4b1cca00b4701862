package shortcut

import "sync"

// DefaultShortcut is registered when nothing valid is persisted.
const DefaultShortcut = "Alt+N"

// State holds the currently active shortcut string. It is shared by the
// hotkey callback and UI command paths; no I/O happens under its lock.
type State struct {
	mu      sync.Mutex
	current string
}

// NewState returns a state cell initialized to initial.
func NewState(initial string) *State {
	return &State{current: initial}
}

// Get returns a copy of the current shortcut.
func (s *State) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *State) set(value string) {
	s.mu.Lock()
	s.current = value
	s.mu.Unlock()
}
