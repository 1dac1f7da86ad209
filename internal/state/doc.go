// Package state persists per-channel shuffle state as JSON files.
//
// Each channel gets its own file, so switching channels never clobbers
// another channel's history. Saves are atomic; a corrupt file is set
// aside with a .bak suffix and treated as absent, the channel simply
// starts a fresh shuffle.
package state
