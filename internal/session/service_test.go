package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/0ccipital/youtube-shuffler/internal/model"
	"github.com/0ccipital/youtube-shuffler/internal/shuffle"
)

const testChannelURL = "https://www.youtube.com/@somechannel/videos"

type fakeFetcher struct {
	mu       sync.Mutex
	records  []model.VideoRecord
	err      error
	calls    int32
	block    chan struct{}
	blockURL string // empty blocks every channel
}

func (f *fakeFetcher) Fetch(ctx context.Context, channelURL string) ([]model.VideoRecord, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil && (f.blockURL == "" || f.blockURL == channelURL) {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeFetcher) FetchVideoDetail(ctx context.Context, videoURL string) (model.VideoRecord, error) {
	return model.VideoRecord{}, errors.New("not implemented")
}

type memCache struct {
	mu     sync.Mutex
	caches map[string]*model.ChannelCache
}

func newMemCache() *memCache {
	return &memCache{caches: make(map[string]*model.ChannelCache)}
}

func (m *memCache) Get(channelURL string) (*model.ChannelCache, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.caches[channelURL], nil
}

func (m *memCache) Put(cc *model.ChannelCache) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[cc.ChannelURL] = cc
	return nil
}

func (m *memCache) UpdateRecord(channelURL string, rec model.VideoRecord) error {
	return nil
}

func (m *memCache) IsStale(channelURL string, maxAge time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cc, ok := m.caches[channelURL]
	if !ok {
		return true
	}
	return cc.Age() > maxAge
}

type memState struct {
	mu       sync.Mutex
	states   map[string]*model.ShuffleState
	failSave bool
}

func newMemState() *memState {
	return &memState{states: make(map[string]*model.ShuffleState)}
}

func (m *memState) Load(channelURL string) (*model.ShuffleState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[channelURL]
	if !ok {
		return nil, nil
	}
	clone := *st
	return &clone, nil
}

func (m *memState) Save(st *model.ShuffleState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("save failed")
	}
	clone := *st
	m.states[st.ChannelURL] = &clone
	return nil
}

func (m *memState) Delete(channelURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, channelURL)
	return nil
}

func (m *memState) LoadAll() ([]*model.ShuffleState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*model.ShuffleState
	for _, st := range m.states {
		clone := *st
		all = append(all, &clone)
	}
	return all, nil
}

type fakePlayer struct {
	mu      sync.Mutex
	played  []string
	running bool
}

func (p *fakePlayer) Play(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, url)
	p.running = true
	return nil
}

func (p *fakePlayer) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
}

func testRecords() []model.VideoRecord {
	return []model.VideoRecord{
		{ID: "vid00000001", Title: "First"},
		{ID: "vid00000002", Title: "Second"},
		{ID: "vid00000003", Title: "Third"},
	}
}

func newTestSession(f *fakeFetcher) (*Session, *memCache, *memState, *fakePlayer) {
	caches := newMemCache()
	states := newMemState()
	player := &fakePlayer{}
	s := New(f, caches, states, player, shuffle.NewEngineWithSeed(1), time.Hour)
	return s, caches, states, player
}

func loadAndWait(t *testing.T, s *Session, url string, force bool) *LoadResult {
	t.Helper()
	results := make(chan *LoadResult, 1)
	errs := make(chan error, 1)
	err := s.LoadChannel(context.Background(), url, force, func(res *LoadResult, err error) {
		if err != nil {
			errs <- err
			return
		}
		results <- res
	})
	if err != nil {
		t.Fatalf("LoadChannel() error = %v", err)
	}
	select {
	case res := <-results:
		return res
	case err := <-errs:
		t.Fatalf("load failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("load timed out")
	}
	return nil
}

func TestLoadChannelFetchesAndCaches(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s, caches, _, _ := newTestSession(f)

	res := loadAndWait(t, s, testChannelURL, false)
	if len(res.Cache.Records) != 3 {
		t.Errorf("got %d records, want 3", len(res.Cache.Records))
	}
	if res.Resumed || res.StaleFallback {
		t.Errorf("first load should be neither resumed nor stale: %+v", res)
	}

	cc, _ := caches.Get(testChannelURL)
	if cc == nil {
		t.Error("listing should be written to the cache store")
	}
}

func TestLoadChannelServesFreshCacheWithoutFetch(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s, caches, _, _ := newTestSession(f)

	caches.Put(model.NewChannelCache(testChannelURL, testRecords()))

	res := loadAndWait(t, s, testChannelURL, false)
	if atomic.LoadInt32(&f.calls) != 0 {
		t.Errorf("fetcher called %d times, want 0 for fresh cache", f.calls)
	}
	if len(res.Cache.Records) != 3 {
		t.Errorf("got %d records, want 3", len(res.Cache.Records))
	}
}

func TestLoadChannelForceRefetches(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s, caches, _, _ := newTestSession(f)

	caches.Put(model.NewChannelCache(testChannelURL, testRecords()[:1]))

	res := loadAndWait(t, s, testChannelURL, true)
	if atomic.LoadInt32(&f.calls) != 1 {
		t.Errorf("fetcher called %d times, want 1 for forced load", f.calls)
	}
	if len(res.Cache.Records) != 3 {
		t.Errorf("got %d records, want refetched listing", len(res.Cache.Records))
	}
}

func TestLoadChannelSingleFlight(t *testing.T) {
	f := &fakeFetcher{records: testRecords(), block: make(chan struct{})}
	s, _, _, _ := newTestSession(f)

	done := make(chan struct{})
	err := s.LoadChannel(context.Background(), testChannelURL, true, func(res *LoadResult, err error) {
		close(done)
	})
	if err != nil {
		t.Fatalf("first LoadChannel() error = %v", err)
	}

	err = s.LoadChannel(context.Background(), testChannelURL, true, func(res *LoadResult, err error) {
		t.Error("second load's callback must never run")
	})
	if !errors.Is(err, ErrLoadInFlight) {
		t.Errorf("second LoadChannel() error = %v, want ErrLoadInFlight", err)
	}

	close(f.block)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("first load never completed")
	}
	if n := atomic.LoadInt32(&f.calls); n != 1 {
		t.Errorf("fetcher called %d times, want exactly 1", n)
	}
}

func TestLoadChannelStaleFallback(t *testing.T) {
	f := &fakeFetcher{err: errors.New("network down")}
	s, caches, _, _ := newTestSession(f)

	old := model.NewChannelCache(testChannelURL, testRecords())
	old.LastUpdated = time.Now().Add(-48 * time.Hour)
	caches.Put(old)

	res := loadAndWait(t, s, testChannelURL, false)
	if !res.StaleFallback {
		t.Error("fetch failure with a cache present should fall back")
	}
	if res.Warning == "" {
		t.Error("stale fallback should carry a warning")
	}
	if len(res.Cache.Records) != 3 {
		t.Errorf("got %d records, want the cached listing", len(res.Cache.Records))
	}
}

func TestLoadChannelFailsWithoutCache(t *testing.T) {
	f := &fakeFetcher{err: errors.New("network down")}
	s, _, _, _ := newTestSession(f)

	errs := make(chan error, 1)
	err := s.LoadChannel(context.Background(), testChannelURL, false, func(res *LoadResult, err error) {
		errs <- err
	})
	if err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-errs:
		if err == nil {
			t.Error("load with no cache and failed fetch should error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("callback never ran")
	}
}

func TestLoadChannelInvalidURL(t *testing.T) {
	f := &fakeFetcher{}
	s, _, _, _ := newTestSession(f)

	err := s.LoadChannel(context.Background(), "not a url", false, func(res *LoadResult, err error) {
		t.Error("callback must not run for an invalid URL")
	})
	if err == nil {
		t.Error("LoadChannel() should reject an invalid URL")
	}
}

func TestLoadChannelResumesState(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s, _, states, _ := newTestSession(f)

	prior := model.NewShuffleState(testChannelURL)
	prior.History = []string{"vid00000001", "vid00000002"}
	prior.Position = 1
	prior.Pool = []string{"vid00000003"}
	states.Save(prior)

	res := loadAndWait(t, s, testChannelURL, false)
	if !res.Resumed {
		t.Error("load should resume the saved state")
	}
	if len(res.State.History) != 2 || res.State.Position != 1 {
		t.Errorf("state not resumed: %+v", res.State)
	}
}

func TestLoadChannelForceStartsFresh(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s, _, states, _ := newTestSession(f)

	prior := model.NewShuffleState(testChannelURL)
	prior.History = []string{"vid00000001"}
	prior.Position = 0
	states.Save(prior)

	res := loadAndWait(t, s, testChannelURL, true)
	if res.Resumed {
		t.Error("forced load should not resume")
	}
	if res.State.HasHistory() {
		t.Errorf("forced load should start fresh, got history %v", res.State.History)
	}
}

func TestNextPersistsAfterEveryStep(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s, _, states, _ := newTestSession(f)
	loadAndWait(t, s, testChannelURL, false)

	rec, err := s.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Next() returned empty record")
	}

	saved, _ := states.Load(testChannelURL)
	if saved == nil || len(saved.History) != 1 {
		t.Errorf("state not persisted after Next(): %+v", saved)
	}

	if _, err := s.Previous(); !errors.Is(err, shuffle.ErrNoHistory) {
		t.Errorf("Previous() at first entry error = %v, want ErrNoHistory", err)
	}
}

func TestNextWithoutChannel(t *testing.T) {
	f := &fakeFetcher{}
	s, _, _, _ := newTestSession(f)

	if _, err := s.Next(); !errors.Is(err, ErrNoChannel) {
		t.Errorf("Next() error = %v, want ErrNoChannel", err)
	}
}

func TestNewShuffleClearsHistory(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s, _, states, _ := newTestSession(f)
	loadAndWait(t, s, testChannelURL, false)

	s.Next()
	s.Next()
	if err := s.NewShuffle(); err != nil {
		t.Fatalf("NewShuffle() error = %v", err)
	}

	pos, total := s.Position()
	if pos != 0 || total != 0 {
		t.Errorf("Position() = %d/%d, want 0/0 after reset", pos, total)
	}
	saved, _ := states.Load(testChannelURL)
	if saved.HasHistory() {
		t.Error("reset state should be persisted")
	}
}

func TestPlaySendsURLToPlayer(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s, _, _, player := newTestSession(f)
	loadAndWait(t, s, testChannelURL, false)

	rec, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	// Upload date set so no background enrichment kicks in.
	rec.UploadDate = "20240101"

	done := make(chan error, 1)
	s.Play(rec, nil, func(err error) { done <- err })
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Play() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Play() never completed")
	}

	player.mu.Lock()
	defer player.mu.Unlock()
	if len(player.played) != 1 {
		t.Fatalf("player got %d URLs, want 1", len(player.played))
	}
	if player.played[0] != rec.WatchURL() {
		t.Errorf("played %q, want %q", player.played[0], rec.WatchURL())
	}
}

func TestCloseStopsPlayer(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s, _, _, player := newTestSession(f)
	loadAndWait(t, s, testChannelURL, false)

	player.Play("something")
	s.Close()
	if player.Running() {
		t.Error("Close() should stop the player")
	}
}

func TestSwitchingChannelsAbandonsPreviousFetch(t *testing.T) {
	channelA := "https://www.youtube.com/@channela/videos"
	channelB := "https://www.youtube.com/@channelb/videos"

	f := &fakeFetcher{records: testRecords(), block: make(chan struct{}), blockURL: channelA}
	s, caches, _, _ := newTestSession(f)
	caches.Put(model.NewChannelCache(channelB, testRecords()))

	aErrs := make(chan error, 1)
	err := s.LoadChannel(context.Background(), channelA, false, func(res *LoadResult, err error) {
		aErrs <- err
	})
	if err != nil {
		t.Fatalf("LoadChannel(A) error = %v", err)
	}

	// B is served from its fresh cache while A's fetch is still out.
	res := loadAndWait(t, s, channelB, false)
	if res.ChannelURL != channelB {
		t.Fatalf("loaded %q, want %q", res.ChannelURL, channelB)
	}

	close(f.block)
	select {
	case err := <-aErrs:
		if err == nil {
			t.Error("abandoned load should not deliver a result")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("abandoned load never completed")
	}

	if got := s.ChannelURL(); got != channelB {
		t.Errorf("ChannelURL() = %q, want %q kept current", got, channelB)
	}
}

func TestForcedLoadFallbackKeepsHistory(t *testing.T) {
	f := &fakeFetcher{err: errors.New("network down")}
	s, caches, states, _ := newTestSession(f)

	old := model.NewChannelCache(testChannelURL, testRecords())
	old.LastUpdated = time.Now().Add(-48 * time.Hour)
	caches.Put(old)

	prior := model.NewShuffleState(testChannelURL)
	prior.History = []string{"vid00000001", "vid00000002"}
	prior.Position = 1
	states.Save(prior)

	res := loadAndWait(t, s, testChannelURL, true)
	if !res.StaleFallback {
		t.Fatal("failed forced fetch with a cache present should fall back")
	}
	if !res.Resumed || len(res.State.History) != 2 {
		t.Errorf("nothing was refreshed, history should survive: %+v", res.State)
	}
}

func TestForcedLoadRemovesSavedState(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s, _, states, _ := newTestSession(f)

	prior := model.NewShuffleState(testChannelURL)
	prior.History = []string{"vid00000001"}
	prior.Position = 0
	states.Save(prior)

	// With the save of the fresh state failing, only an explicit removal
	// keeps the discarded history from coming back.
	states.failSave = true
	loadAndWait(t, s, testChannelURL, true)

	states.failSave = false
	saved, _ := states.Load(testChannelURL)
	if saved != nil && saved.HasHistory() {
		t.Errorf("forced load should remove the old saved history: %+v", saved)
	}
}

type slowPlayer struct {
	fakePlayer
	release chan struct{}
}

func (p *slowPlayer) Play(url string) error {
	<-p.release
	return p.fakePlayer.Play(url)
}

func TestPlayReturnsWhilePlayerIsStarting(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	player := &slowPlayer{release: make(chan struct{})}
	s := New(f, newMemCache(), newMemState(), player, shuffle.NewEngineWithSeed(1), time.Hour)
	loadAndWait(t, s, testChannelURL, false)

	rec, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	rec.UploadDate = "20240101"

	// Play must hand off to the background even though the player has
	// not come up yet.
	done := make(chan error, 1)
	s.Play(rec, nil, func(err error) { done <- err })

	select {
	case <-done:
		t.Fatal("launch completed before the player was released")
	case <-time.After(50 * time.Millisecond):
	}

	close(player.release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Play() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Play() never completed")
	}

	player.mu.Lock()
	defer player.mu.Unlock()
	if len(player.played) != 1 {
		t.Errorf("player got %d URLs, want 1", len(player.played))
	}
}

func TestCancelLoadsAbortsFetch(t *testing.T) {
	f := &fakeFetcher{records: testRecords(), block: make(chan struct{})}
	s, _, _, _ := newTestSession(f)

	errs := make(chan error, 1)
	err := s.LoadChannel(context.Background(), testChannelURL, true, func(res *LoadResult, err error) {
		errs <- err
	})
	if err != nil {
		t.Fatal(err)
	}

	s.CancelLoads()
	select {
	case err := <-errs:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("cancelled load error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled load never completed")
	}
}
