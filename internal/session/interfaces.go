package session

import (
	"context"
	"time"

	"github.com/0ccipital/youtube-shuffler/internal/model"
)

// Fetcher lists channel videos and fetches per-video metadata.
type Fetcher interface {
	Fetch(ctx context.Context, channelURL string) ([]model.VideoRecord, error)
	FetchVideoDetail(ctx context.Context, videoURL string) (model.VideoRecord, error)
}

// CacheStore persists channel listings.
type CacheStore interface {
	Get(channelURL string) (*model.ChannelCache, error)
	Put(cc *model.ChannelCache) error
	UpdateRecord(channelURL string, rec model.VideoRecord) error
	IsStale(channelURL string, maxAge time.Duration) bool
}

// StateStore persists per-channel shuffle state.
type StateStore interface {
	Load(channelURL string) (*model.ShuffleState, error)
	Save(st *model.ShuffleState) error
	Delete(channelURL string) error
	LoadAll() ([]*model.ShuffleState, error)
}

// Player plays video URLs in an external player instance.
type Player interface {
	Play(url string) error
	Running() bool
	Stop()
}
