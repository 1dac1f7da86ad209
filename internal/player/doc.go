// Package player drives a single long-lived mpv instance over its JSON
// IPC socket.
//
// mpv is launched once in idle mode with a fixed socket path; every
// video after that is a "loadfile" command into the same window, so
// playback switches instantly instead of spawning a new player each
// time. If the instance dies it is relaunched on the next play.
package player
