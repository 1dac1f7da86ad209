// Package session orchestrates the application's core flow: loading a
// channel (fetch or cache), advancing the shuffle, and handing videos
// to the player.
//
// A Session holds the current channel's cache and shuffle state
// explicitly and talks to the fetcher, stores, and player through
// small interfaces. Long-running fetches happen on background
// goroutines with results delivered through callbacks; everything else
// is expected to run on the UI thread, so the session itself only
// locks around the in-flight fetch registry.
package session
