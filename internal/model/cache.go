package model

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Length of the filesystem key derived from a channel URL
const channelKeyLength = 12

// ChannelCache holds the full fetched listing for one channel. The record
// list is replaced wholesale on refresh, never partially mutated.
type ChannelCache struct {
	ChannelURL  string        `json:"channel_url"`
	Records     []VideoRecord `json:"records"`
	LastUpdated time.Time     `json:"last_updated"`
}

// NewChannelCache creates a cache for the given channel stamped with the
// current time.
func NewChannelCache(channelURL string, records []VideoRecord) *ChannelCache {
	return &ChannelCache{
		ChannelURL:  channelURL,
		Records:     records,
		LastUpdated: time.Now(),
	}
}

// ChannelName returns the channel display name carried by the records.
func (c *ChannelCache) ChannelName() string {
	for _, rec := range c.Records {
		if rec.Channel != "" {
			return rec.Channel
		}
	}
	return "Unknown"
}

// Find returns the record with the given id.
func (c *ChannelCache) Find(id string) (VideoRecord, bool) {
	for _, rec := range c.Records {
		if rec.ID == id {
			return rec, true
		}
	}
	return VideoRecord{}, false
}

// IDSet returns the set of video ids in the cache.
func (c *ChannelCache) IDSet() map[string]struct{} {
	ids := make(map[string]struct{}, len(c.Records))
	for _, rec := range c.Records {
		ids[rec.ID] = struct{}{}
	}
	return ids
}

// IDs returns the ordered video ids in the cache.
func (c *ChannelCache) IDs() []string {
	ids := make([]string, 0, len(c.Records))
	for _, rec := range c.Records {
		ids = append(ids, rec.ID)
	}
	return ids
}

// Age returns how long ago the cache was last refreshed.
func (c *ChannelCache) Age() time.Duration {
	return time.Since(c.LastUpdated)
}

// ChannelKey derives a short filesystem-safe key from a channel URL. Cache
// and state files for the same channel share this key.
func ChannelKey(channelURL string) string {
	sum := md5.Sum([]byte(channelURL))
	return hex.EncodeToString(sum[:])[:channelKeyLength]
}
