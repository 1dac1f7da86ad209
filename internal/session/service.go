package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/0ccipital/youtube-shuffler/internal/fetch"
	"github.com/0ccipital/youtube-shuffler/internal/logging"
	"github.com/0ccipital/youtube-shuffler/internal/model"
	"github.com/0ccipital/youtube-shuffler/internal/shuffle"
)

var (
	// ErrNoChannel is returned when no channel has been loaded yet.
	ErrNoChannel = errors.New("no channel loaded")

	// ErrLoadInFlight is returned when the channel is already being fetched.
	ErrLoadInFlight = errors.New("channel load already in progress")
)

// enrichTimeout bounds the background per-video metadata fetch.
const enrichTimeout = 30 * time.Second

// LoadResult is delivered to the LoadChannel callback on success.
type LoadResult struct {
	ChannelURL    string
	Cache         *model.ChannelCache
	State         *model.ShuffleState
	Resumed       bool
	StaleFallback bool
	Warning       string
}

// Session is the application's central coordinator. It owns the
// current channel's listing and shuffle state and drives the injected
// services.
type Session struct {
	fetcher Fetcher
	caches  CacheStore
	states  StateStore
	player  Player
	engine  *shuffle.Engine
	maxAge  time.Duration

	mu         sync.Mutex
	inflight   map[string]context.CancelFunc
	wantURL    string // most recently requested channel
	channelURL string
	cache      *model.ChannelCache
	state      *model.ShuffleState
}

// New creates a session over the given services. maxAge is the cache
// freshness threshold.
func New(fetcher Fetcher, caches CacheStore, states StateStore, player Player, engine *shuffle.Engine, maxAge time.Duration) *Session {
	return &Session{
		fetcher:  fetcher,
		caches:   caches,
		states:   states,
		player:   player,
		engine:   engine,
		maxAge:   maxAge,
		inflight: make(map[string]context.CancelFunc),
	}
}

// LoadChannel makes the channel current. A fresh cache is served
// directly; otherwise the listing is fetched on a background goroutine
// and done is called with the result. done may run on that goroutine,
// callers marshal onto the UI thread themselves.
//
// Returns an error immediately for an invalid URL or when a fetch for
// the same channel is already in flight; in that case done is never
// called.
func (s *Session) LoadChannel(ctx context.Context, rawURL string, force bool, done func(*LoadResult, error)) error {
	url, err := fetch.NormalizeChannelURL(rawURL)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if _, busy := s.inflight[url]; busy {
		s.mu.Unlock()
		return ErrLoadInFlight
	}

	// Switching channels abandons the previous channel's fetch. Its
	// completion is also discarded below in case it already finished.
	for u, cancel := range s.inflight {
		if u != url {
			logging.Log.Info().Str("channel", u).Msg("cancelling superseded fetch")
			cancel()
		}
	}
	s.wantURL = url

	if !force && !s.caches.IsStale(url, s.maxAge) {
		cc, err := s.caches.Get(url)
		if err == nil && cc != nil {
			res := s.installLocked(url, cc, force, false, "")
			s.mu.Unlock()
			done(res, nil)
			return nil
		}
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	s.inflight[url] = cancel
	s.mu.Unlock()

	jobID := uuid.NewString()[:8]
	logging.Log.Info().Str("job", jobID).Str("channel", url).Bool("force", force).Msg("fetching channel listing")

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.inflight, url)
			s.mu.Unlock()
			cancel()
		}()

		records, err := s.fetcher.Fetch(fetchCtx, url)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logging.Log.Info().Str("job", jobID).Msg("channel fetch cancelled")
				done(nil, err)
				return
			}
			logging.Log.Warn().Str("job", jobID).Err(err).Msg("channel fetch failed")

			// A stale listing beats no listing.
			cc, cerr := s.caches.Get(url)
			if cerr == nil && cc != nil {
				warning := fmt.Sprintf("fetch failed (%v); using cached listing from %s",
					err, cc.LastUpdated.Format("Jan 02 15:04"))
				s.mu.Lock()
				if s.wantURL != url {
					s.mu.Unlock()
					logging.Log.Info().Str("job", jobID).Msg("discarding superseded channel listing")
					done(nil, context.Canceled)
					return
				}
				res := s.installLocked(url, cc, force, true, warning)
				s.mu.Unlock()
				done(res, nil)
				return
			}
			done(nil, err)
			return
		}

		cc := model.NewChannelCache(url, records)
		if err := s.caches.Put(cc); err != nil {
			logging.Log.Warn().Str("job", jobID).Err(err).Msg("failed to write channel cache")
		}
		logging.Log.Info().Str("job", jobID).Int("videos", len(records)).Msg("channel listing fetched")

		s.mu.Lock()
		// Another channel may have become current while this fetch ran.
		// The listing is cached above, but it must not be installed.
		if s.wantURL != url {
			s.mu.Unlock()
			logging.Log.Info().Str("job", jobID).Msg("discarding superseded channel listing")
			done(nil, context.Canceled)
			return
		}
		res := s.installLocked(url, cc, force, false, "")
		s.mu.Unlock()
		done(res, nil)
	}()
	return nil
}

// installLocked makes the listing current, resuming or resetting the
// channel's shuffle state. Caller holds the lock.
func (s *Session) installLocked(url string, cc *model.ChannelCache, force, stale bool, warning string) *LoadResult {
	var st *model.ShuffleState
	resumed := false

	// A forced load starts a fresh cycle only when the listing actually
	// refreshed. Falling back to the stale cache keeps the saved
	// history, nothing changed underneath it.
	startFresh := force && !stale

	if startFresh {
		// Remove the old state file up front so the discarded history
		// cannot come back even if the fresh save below fails.
		if err := s.states.Delete(url); err != nil {
			logging.Log.Warn().Err(err).Msg("failed to remove saved shuffle state")
		}
	} else {
		loaded, err := s.states.Load(url)
		if err != nil {
			logging.Log.Warn().Err(err).Msg("failed to load shuffle state")
		} else if loaded != nil {
			st = loaded
			resumed = st.HasHistory()
		}
	}
	if st == nil {
		st = model.NewShuffleState(url)
	}

	s.engine.Reconcile(st, cc)
	st.LastUsed = time.Now()
	if err := s.states.Save(st); err != nil {
		logging.Log.Warn().Err(err).Msg("failed to save shuffle state")
	}

	s.channelURL = url
	s.cache = cc
	s.state = st

	return &LoadResult{
		ChannelURL:    url,
		Cache:         cc,
		State:         st,
		Resumed:       resumed,
		StaleFallback: stale,
		Warning:       warning,
	}
}

// Next advances the shuffle and returns the video to play.
func (s *Session) Next() (model.VideoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return model.VideoRecord{}, ErrNoChannel
	}
	rec, err := s.engine.Next(s.state, s.cache)
	if err != nil {
		return model.VideoRecord{}, err
	}
	s.persistLocked()
	return rec, nil
}

// Previous steps back through history.
func (s *Session) Previous() (model.VideoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return model.VideoRecord{}, ErrNoChannel
	}
	rec, err := s.engine.Previous(s.state, s.cache)
	if err != nil {
		return model.VideoRecord{}, err
	}
	s.persistLocked()
	return rec, nil
}

// Current returns the video at the history cursor.
func (s *Session) Current() (model.VideoRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return model.VideoRecord{}, false
	}
	return s.engine.Current(s.state, s.cache)
}

// NewShuffle discards the current channel's history and pool.
func (s *Session) NewShuffle() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return ErrNoChannel
	}
	s.engine.Reset(s.state)
	s.persistLocked()
	return nil
}

// Play hands the video to the player on a background goroutine, since
// launching the player can take several seconds. done receives the
// launch result. If the video's metadata is incomplete a follow-up
// fetch fills it in, updates the cache, and calls enriched with the
// merged record. Both callbacks may be nil and may run on the
// background goroutine; callers marshal onto the UI thread themselves.
func (s *Session) Play(rec model.VideoRecord, enriched func(model.VideoRecord), done func(error)) {
	url := rec.URL
	if url == "" {
		url = rec.WatchURL()
	}

	go func() {
		if err := s.player.Play(url); err != nil {
			if done != nil {
				done(err)
			}
			return
		}
		logging.Log.Info().Str("video", rec.ID).Str("title", rec.GetDisplayTitle()).Msg("playing video")
		if done != nil {
			done(nil)
		}

		if rec.UploadDate == "" && !rec.IsPlaceholder() {
			s.enrich(rec, enriched)
		}
	}()
}

// enrich fetches full metadata for the record and merges it into the
// cached listing.
func (s *Session) enrich(rec model.VideoRecord, enriched func(model.VideoRecord)) {
	ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
	defer cancel()

	detail, err := s.fetcher.FetchVideoDetail(ctx, rec.WatchURL())
	if err != nil {
		logging.Log.Debug().Str("video", rec.ID).Err(err).Msg("metadata enrichment failed")
		return
	}

	s.mu.Lock()
	channelURL := s.channelURL
	var merged model.VideoRecord
	found := false
	if s.cache != nil {
		for i := range s.cache.Records {
			if s.cache.Records[i].ID == rec.ID {
				s.cache.Records[i] = s.cache.Records[i].Merge(detail)
				merged = s.cache.Records[i]
				found = true
				break
			}
		}
	}
	s.mu.Unlock()

	if !found {
		return
	}
	if err := s.caches.UpdateRecord(channelURL, detail); err != nil {
		logging.Log.Debug().Str("video", rec.ID).Err(err).Msg("failed to persist enriched metadata")
	}
	if enriched != nil {
		enriched(merged)
	}
}

// PlayerRunning reports whether the external player is up.
func (s *Session) PlayerRunning() bool {
	return s.player.Running()
}

// ChannelURL returns the current channel URL, empty when none is loaded.
func (s *Session) ChannelURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelURL
}

// Position returns the 1-based history cursor and the history length.
func (s *Session) Position() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return 0, 0
	}
	return s.state.Position + 1, len(s.state.History)
}

// CanStepBack reports whether Previous has anywhere to go.
func (s *Session) CanStepBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != nil && !s.state.AtStart()
}

// RecentChannels returns known channel URLs, most recently used first.
func (s *Session) RecentChannels() []string {
	states, err := s.states.LoadAll()
	if err != nil {
		logging.Log.Warn().Err(err).Msg("failed to list saved channels")
		return nil
	}
	urls := make([]string, 0, len(states))
	for _, st := range states {
		urls = append(urls, st.ChannelURL)
	}
	return urls
}

// CancelLoads aborts every in-flight fetch.
func (s *Session) CancelLoads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for url, cancel := range s.inflight {
		logging.Log.Info().Str("channel", url).Msg("cancelling in-flight fetch")
		cancel()
	}
}

// Close cancels outstanding work, persists the current state, and
// stops the player.
func (s *Session) Close() {
	s.CancelLoads()

	s.mu.Lock()
	if s.state != nil {
		s.persistLocked()
	}
	s.mu.Unlock()

	s.player.Stop()
}

// persistLocked saves the current state. Caller holds the lock.
func (s *Session) persistLocked() {
	s.state.LastUsed = time.Now()
	if err := s.states.Save(s.state); err != nil {
		logging.Log.Warn().Err(err).Msg("failed to save shuffle state")
	}
}
