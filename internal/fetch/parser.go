package fetch

import (
	"encoding/json"
	"strings"

	"github.com/0ccipital/youtube-shuffler/internal/model"
)

// flatListing is the --flat-playlist --dump-single-json output shape.
// Only the fields we read are declared.
type flatListing struct {
	Channel  string      `json:"channel"`
	Uploader string      `json:"uploader"`
	Title    string      `json:"title"`
	Entries  []flatEntry `json:"entries"`
}

type flatEntry struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Channel         string  `json:"channel"`
	PlaylistChannel string  `json:"playlist_channel"`
	Uploader        string  `json:"uploader"`
	Duration        float64 `json:"duration"`
	ViewCount       int64   `json:"view_count"`
}

// videoDetail is the per-video --dump-single-json output shape.
type videoDetail struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Channel    string  `json:"channel"`
	Uploader   string  `json:"uploader"`
	Duration   float64 `json:"duration"`
	ViewCount  int64   `json:"view_count"`
	UploadDate string  `json:"upload_date"`
	WebpageURL string  `json:"webpage_url"`
}

// parseFlatListing converts a flat channel listing into video records.
// Entries without an id, and channel-id rows (id starting with "UC"),
// are skipped.
func parseFlatListing(data []byte) ([]model.VideoRecord, error) {
	var listing flatListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, newFetchError("failed to parse yt-dlp output", string(data))
	}

	records := make([]model.VideoRecord, 0, len(listing.Entries))
	for _, entry := range listing.Entries {
		if entry.ID == "" || strings.HasPrefix(entry.ID, "UC") {
			continue
		}

		rec := model.VideoRecord{
			ID:        entry.ID,
			Title:     entry.Title,
			Channel:   entryChannel(entry, listing),
			Duration:  int64(entry.Duration),
			ViewCount: entry.ViewCount,
		}
		rec.URL = rec.WatchURL()
		records = append(records, rec)
	}
	return records, nil
}

// entryChannel picks the first non-empty channel name for an entry.
func entryChannel(entry flatEntry, listing flatListing) string {
	for _, name := range []string{
		entry.PlaylistChannel,
		entry.Channel,
		entry.Uploader,
		listing.Channel,
		listing.Uploader,
		listing.Title,
	} {
		if name != "" {
			return name
		}
	}
	return ""
}

// parseVideoDetail converts per-video metadata into a record.
func parseVideoDetail(data []byte) (model.VideoRecord, error) {
	var detail videoDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return model.VideoRecord{}, newFetchError("failed to parse video metadata", string(data))
	}
	if detail.ID == "" {
		return model.VideoRecord{}, newFetchError("video metadata has no id", string(data))
	}

	rec := model.VideoRecord{
		ID:         detail.ID,
		Title:      detail.Title,
		Channel:    detail.Channel,
		Duration:   int64(detail.Duration),
		ViewCount:  detail.ViewCount,
		UploadDate: detail.UploadDate,
		URL:        detail.WebpageURL,
	}
	if rec.Channel == "" {
		rec.Channel = detail.Uploader
	}
	if rec.URL == "" {
		rec.URL = rec.WatchURL()
	}
	return rec, nil
}
