package shuffle

import (
	"errors"
	"math/rand"
	"time"

	"github.com/0ccipital/youtube-shuffler/internal/model"
)

var (
	// ErrEmptyChannel is returned when the channel has no playable videos.
	ErrEmptyChannel = errors.New("channel has no videos")

	// ErrNoHistory is returned when stepping back with nothing behind the cursor.
	ErrNoHistory = errors.New("no earlier video in history")
)

// Engine advances and rewinds shuffle state against a channel listing.
// It mutates the state it is given; callers persist it afterwards.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates an engine seeded from the clock.
func NewEngine() *Engine {
	return NewEngineWithSeed(time.Now().UnixNano())
}

// NewEngineWithSeed creates an engine with a fixed seed, for reproducible
// sequences in tests.
func NewEngineWithSeed(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// Next moves the cursor forward. If the cursor sits before the end of
// history it replays the recorded sequence; otherwise it draws a fresh
// video from the pool, refilling the pool when it is empty.
func (e *Engine) Next(st *model.ShuffleState, cc *model.ChannelCache) (model.VideoRecord, error) {
	if len(cc.Records) == 0 {
		return model.VideoRecord{}, ErrEmptyChannel
	}

	// Replay forward through history first. Entries whose video vanished
	// from the channel are skipped.
	for !st.AtEnd() {
		st.Position++
		if rec, ok := cc.Find(st.History[st.Position]); ok {
			return rec, nil
		}
	}

	id, err := e.draw(st, cc)
	if err != nil {
		return model.VideoRecord{}, err
	}

	st.History = append(st.History, id)
	st.Position = len(st.History) - 1

	rec, ok := cc.Find(id)
	if !ok {
		// Pool ids come from the cache, so this should not happen.
		return model.VideoRecord{}, ErrEmptyChannel
	}
	return rec, nil
}

// Previous moves the cursor one step back and returns the video there.
// If that video no longer exists in the channel, a placeholder record
// carrying just the id is returned so the UI can still show the step.
func (e *Engine) Previous(st *model.ShuffleState, cc *model.ChannelCache) (model.VideoRecord, error) {
	if st.AtStart() {
		return model.VideoRecord{}, ErrNoHistory
	}

	st.Position--
	id := st.History[st.Position]

	if rec, ok := cc.Find(id); ok {
		return rec, nil
	}
	return placeholder(id), nil
}

// Current returns the video at the cursor, if any.
func (e *Engine) Current(st *model.ShuffleState, cc *model.ChannelCache) (model.VideoRecord, bool) {
	id, ok := st.CurrentID()
	if !ok {
		return model.VideoRecord{}, false
	}
	if rec, found := cc.Find(id); found {
		return rec, true
	}
	return placeholder(id), true
}

// Reset clears history and pool. The next draw starts a fresh cycle
// over the whole channel.
func (e *Engine) Reset(st *model.ShuffleState) {
	st.History = nil
	st.Position = -1
	st.Pool = nil
}

// Reconcile aligns a state with a possibly changed channel listing.
// Pool ids whose video vanished are dropped, newly appeared videos
// join the pool, and the cursor is clamped into range. History keeps
// vanished ids so replay positions stay stable.
func (e *Engine) Reconcile(st *model.ShuffleState, cc *model.ChannelCache) {
	known := cc.IDSet()

	if len(st.Pool) > 0 {
		kept := st.Pool[:0]
		for _, id := range st.Pool {
			if _, ok := known[id]; ok {
				kept = append(kept, id)
			}
		}
		st.Pool = kept
	}

	if len(st.Pool) > 0 {
		inPool := make(map[string]bool, len(st.Pool))
		for _, id := range st.Pool {
			inPool[id] = true
		}
		seen := make(map[string]bool, len(st.History))
		for _, id := range st.History {
			seen[id] = true
		}
		for _, id := range cc.IDs() {
			if !inPool[id] && !seen[id] {
				st.Pool = append(st.Pool, id)
			}
		}
	}

	if st.Position >= len(st.History) {
		st.Position = len(st.History) - 1
	}
	if len(st.History) == 0 {
		st.Position = -1
	}
}

// draw removes and returns a uniformly random id from the pool,
// refilling it first when empty.
func (e *Engine) draw(st *model.ShuffleState, cc *model.ChannelCache) (string, error) {
	if len(st.Pool) == 0 {
		e.refill(st, cc)
	}
	if len(st.Pool) == 0 {
		return "", ErrEmptyChannel
	}

	i := e.rng.Intn(len(st.Pool))
	id := st.Pool[i]
	st.Pool[i] = st.Pool[len(st.Pool)-1]
	st.Pool = st.Pool[:len(st.Pool)-1]
	return id, nil
}

// refill rebuilds the pool from the full listing, excluding the most
// recently played video so it cannot repeat immediately. A channel
// with a single video is the one exception.
func (e *Engine) refill(st *model.ShuffleState, cc *model.ChannelCache) {
	last, _ := st.LastPlayedID()

	pool := make([]string, 0, len(cc.Records))
	for _, rec := range cc.Records {
		if rec.ID == last && len(cc.Records) > 1 {
			continue
		}
		pool = append(pool, rec.ID)
	}
	st.Pool = pool
}

func placeholder(id string) model.VideoRecord {
	return model.VideoRecord{
		ID:    id,
		Title: model.UnknownTitle,
		URL:   model.VideoRecord{ID: id}.WatchURL(),
	}
}
