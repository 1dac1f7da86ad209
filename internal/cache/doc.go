// Package cache persists channel video listings as JSON files on disk.
//
// Each channel gets one file named after a short hash of its URL, so
// repeated loads of the same channel reuse the listing without hitting
// the network. Writes go through a temp file and rename, so a crash
// mid-write never leaves a truncated cache behind. A corrupt file is
// treated as a miss and removed.
package cache
