package model

// Package model defines domain data structures used across the app: video
// records, per-channel listing caches, and shuffle state. Structures are
// designed for direct JSON persistence and explicit state transitions.
