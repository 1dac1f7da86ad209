// Package shuffle implements pool-based random selection with history.
//
// Each channel keeps a pool of not-yet-played video ids. Next draws
// uniformly from the pool and appends to history; when the pool runs
// dry it refills with every video except the one just played, so the
// same video never plays twice in a row on a channel with more than
// one video. Moving backward and forward through history replays the
// exact sequence, a forward step only draws fresh when the cursor is
// already at the newest entry.
package shuffle
