package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconPrevious = "⏮"
	IconPlay     = "▶"
	IconNext     = "⏭"
	IconSettings = "⚙"
	IconTools    = "🔧"
)

// Text fragments
const (
	MetaSeparator   = " • "
	DashPlaceholder = "—"

	PositionFormat = "%d of %d"

	PlayerStatusRunning = "mpv: running"
	PlayerStatusStopped = "mpv: not running"
)

// Layout sizing
const (
	WindowWidth  float32 = 600
	WindowHeight float32 = 520

	LogViewMinHeight float32 = 140
)

// Polling and display behavior
const (
	PlayerStatusPollInterval = 2 * time.Second

	// In-app log view keeps only the most recent lines.
	LogViewMaxLines = 200
)
