// Package screen provides the top-level screen context.
package screen

import "sync"

// Screen represents a top-level screen of the console.
type Screen int

const (
	Player      Screen = iota // Audio player (transport widgets)
	FileManager               // Track browser
	WifiConfig                // Network provisioning
)

// String returns the string representation of the screen.
func (s Screen) String() string {
	switch s {
	case Player:
		return "player"
	case FileManager:
		return "file_manager"
	case WifiConfig:
		return "wifi_config"
	default:
		return "unknown"
	}
}

// Parse parses a screen name as produced by String.
func Parse(name string) (Screen, bool) {
	switch name {
	case "player":
		return Player, true
	case "file_manager", "files":
		return FileManager, true
	case "wifi_config", "wifi":
		return WifiConfig, true
	default:
		return Player, false
	}
}

// Context tracks which screen is active. Exactly one screen is active at a time.
type Context struct {
	mu       sync.RWMutex
	active   Screen
	switches uint64
}

// NewContext creates a context with the player screen active.
func NewContext() *Context {
	return &Context{active: Player}
}

// Active returns the active screen.
func (c *Context) Active() Screen {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Is reports whether s is the active screen.
func (c *Context) Is(s Screen) bool {
	return c.Active() == s
}

// Set activates s and returns the previously active screen.
// changed is false when s was already active.
func (c *Context) Set(s Screen) (prev Screen, changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev = c.active
	if prev == s {
		return prev, false
	}
	c.active = s
	c.switches++
	return prev, true
}

// Switches returns the number of screen changes since creation.
func (c *Context) Switches() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.switches
}
