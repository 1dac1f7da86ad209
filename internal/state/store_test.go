package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/0ccipital/youtube-shuffler/internal/model"
)

const testChannelURL = "https://www.youtube.com/@somechannel/videos"

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	st := model.NewShuffleState(testChannelURL)
	st.History = []string{"a", "b", "c"}
	st.Position = 1
	st.Pool = []string{"d", "e"}
	st.LastUsed = time.Now()

	if err := store.Save(st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(testChannelURL)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil {
		t.Fatal("Load() = nil, want saved state")
	}
	if len(got.History) != 3 || got.Position != 1 || len(got.Pool) != 2 {
		t.Errorf("state not restored: %+v", got)
	}
}

func TestStoreMiss(t *testing.T) {
	store := NewStore(t.TempDir())

	got, err := store.Load(testChannelURL)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != nil {
		t.Error("Load() on empty store should return nil")
	}
}

func TestStoreCorruptFileSetAside(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	path := filepath.Join(dir, "state_"+model.ChannelKey(testChannelURL)+".json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(testChannelURL)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != nil {
		t.Error("corrupt state should read as absent")
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Error("corrupt state file should be kept as .bak")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt state file should be moved away")
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(t.TempDir())

	st := model.NewShuffleState(testChannelURL)
	if err := store.Save(st); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(testChannelURL); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, err := store.Load(testChannelURL)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("state should be gone after Delete()")
	}

	// Deleting again is not an error.
	if err := store.Delete(testChannelURL); err != nil {
		t.Errorf("Delete() of missing state error = %v", err)
	}
}

func TestLoadAllSortedByLastUsed(t *testing.T) {
	store := NewStore(t.TempDir())

	old := model.NewShuffleState("https://www.youtube.com/@older/videos")
	old.LastUsed = time.Now().Add(-time.Hour)
	recent := model.NewShuffleState("https://www.youtube.com/@recent/videos")
	recent.LastUsed = time.Now()

	if err := store.Save(old); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(recent); err != nil {
		t.Fatal(err)
	}

	states, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("LoadAll() got %d states, want 2", len(states))
	}
	if states[0].ChannelURL != recent.ChannelURL {
		t.Errorf("LoadAll()[0] = %q, want most recently used first", states[0].ChannelURL)
	}
}

func TestLoadAllEmptyDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing"))

	states, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(states) != 0 {
		t.Errorf("LoadAll() got %d states, want 0", len(states))
	}
}
