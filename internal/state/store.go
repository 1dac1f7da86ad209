package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/0ccipital/youtube-shuffler/internal/logging"
	"github.com/0ccipital/youtube-shuffler/internal/model"
	"github.com/0ccipital/youtube-shuffler/internal/platform"
)

const (
	statePrefix = "state_"
	stateSuffix = ".json"
)

// Store reads and writes per-channel shuffle state under a directory.
type Store struct {
	dir string
}

// NewStore creates a state store rooted at dir. The directory must
// already exist.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load returns the saved state for the channel, or nil if there is
// none. A corrupt file is renamed with a .bak suffix and reported as
// absent.
func (s *Store) Load(channelURL string) (*model.ShuffleState, error) {
	path := s.path(channelURL)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var st model.ShuffleState
	if err := json.Unmarshal(data, &st); err != nil {
		logging.Log.Warn().Str("path", path).Err(err).Msg("setting aside corrupt state file")
		os.Rename(path, path+".bak")
		return nil, nil
	}
	return &st, nil
}

// Save persists the state atomically.
func (s *Store) Save(st *model.ShuffleState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return platform.WriteFileAtomic(s.path(st.ChannelURL), data)
}

// Delete removes the saved state for the channel, if any.
func (s *Store) Delete(channelURL string) error {
	err := os.Remove(s.path(channelURL))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state file: %w", err)
	}
	return nil
}

// LoadAll returns every saved state, most recently used first. Files
// that fail to parse are skipped.
func (s *Store) LoadAll() ([]*model.ShuffleState, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state directory: %w", err)
	}

	var states []*model.ShuffleState
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, statePrefix) || !strings.HasSuffix(name, stateSuffix) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		var st model.ShuffleState
		if err := json.Unmarshal(data, &st); err != nil {
			continue
		}
		states = append(states, &st)
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].LastUsed.After(states[j].LastUsed)
	})
	return states, nil
}

func (s *Store) path(channelURL string) string {
	name := statePrefix + model.ChannelKey(channelURL) + stateSuffix
	return filepath.Join(s.dir, name)
}
