package model

import "time"

// ShuffleState tracks the shuffle cycle for one channel: the ordered history
// of played video ids, the cursor into it, and the pool of ids not yet played
// in the current cycle. One state exists per channel and survives restarts.
type ShuffleState struct {
	ChannelURL string    `json:"channel_url"`
	History    []string  `json:"history"`
	Position   int       `json:"position"` // index into History, -1 when empty
	Pool       []string  `json:"pool"`
	LastUsed   time.Time `json:"last_used"`
}

// NewShuffleState creates an empty state for the given channel.
func NewShuffleState(channelURL string) *ShuffleState {
	return &ShuffleState{
		ChannelURL: channelURL,
		Position:   -1,
	}
}

// HasHistory reports whether any video has been played.
func (s *ShuffleState) HasHistory() bool {
	return len(s.History) > 0 && s.Position >= 0
}

// AtStart reports whether the cursor cannot move further back.
func (s *ShuffleState) AtStart() bool {
	return s.Position <= 0
}

// AtEnd reports whether the cursor is on the newest history entry.
func (s *ShuffleState) AtEnd() bool {
	return s.Position >= len(s.History)-1
}

// CurrentID returns the video id under the cursor.
func (s *ShuffleState) CurrentID() (string, bool) {
	if s.Position < 0 || s.Position >= len(s.History) {
		return "", false
	}
	return s.History[s.Position], true
}

// LastPlayedID returns the most recently drawn video id, regardless of where
// the cursor currently sits.
func (s *ShuffleState) LastPlayedID() (string, bool) {
	if len(s.History) == 0 {
		return "", false
	}
	return s.History[len(s.History)-1], true
}
