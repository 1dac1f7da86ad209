package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/0ccipital/youtube-shuffler/internal/logging"
	"github.com/0ccipital/youtube-shuffler/internal/model"
	"github.com/0ccipital/youtube-shuffler/internal/platform"
)

// Store reads and writes per-channel listing caches under a directory.
type Store struct {
	dir string
}

// NewStore creates a cache store rooted at dir. The directory must
// already exist.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Get returns the cached listing for the channel, or nil if there is
// none. A corrupt cache file is removed and reported as a miss.
func (s *Store) Get(channelURL string) (*model.ChannelCache, error) {
	path := s.path(channelURL)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	var cc model.ChannelCache
	if err := json.Unmarshal(data, &cc); err != nil {
		logging.Log.Warn().Str("path", path).Err(err).Msg("removing corrupt cache file")
		os.Remove(path)
		return nil, nil
	}
	return &cc, nil
}

// Put replaces the cached listing for the channel.
func (s *Store) Put(cc *model.ChannelCache) error {
	data, err := json.MarshalIndent(cc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	return platform.WriteFileAtomic(s.path(cc.ChannelURL), data)
}

// UpdateRecord merges enriched metadata for one video into the cached
// listing. The cache timestamp is preserved so enrichment does not
// affect staleness.
func (s *Store) UpdateRecord(channelURL string, rec model.VideoRecord) error {
	cc, err := s.Get(channelURL)
	if err != nil {
		return err
	}
	if cc == nil {
		return fmt.Errorf("no cache for channel %s", channelURL)
	}

	for i := range cc.Records {
		if cc.Records[i].ID == rec.ID {
			cc.Records[i] = cc.Records[i].Merge(rec)
			break
		}
	}

	data, err := json.MarshalIndent(cc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	return platform.WriteFileAtomic(s.path(channelURL), data)
}

// IsStale reports whether the cached listing is older than maxAge.
// A missing cache is stale.
func (s *Store) IsStale(channelURL string, maxAge time.Duration) bool {
	cc, err := s.Get(channelURL)
	if err != nil || cc == nil {
		return true
	}
	return cc.Age() > maxAge
}

func (s *Store) path(channelURL string) string {
	name := fmt.Sprintf("channel_%s.json", model.ChannelKey(channelURL))
	return filepath.Join(s.dir, name)
}
