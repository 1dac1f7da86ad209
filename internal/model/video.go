package model

import (
	"fmt"
	"strings"
	"time"
)

// URL template for videos identified only by id
const (
	WatchURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Upload date format used by yt-dlp
const (
	UploadDateFormat  = "20060102"
	DisplayDateFormat = "Jan 02, 2006"
)

// Time formatting constants
const (
	SecondsPerHour   = 3600
	SecondsPerMinute = 60
)

// UnknownTitle is shown for history entries whose video no longer exists in
// the channel cache.
const UnknownTitle = "unknown"

// VideoRecord represents a single video from a channel listing. Records are
// immutable once fetched; identity is the video ID.
type VideoRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Channel    string `json:"channel,omitempty"`
	ViewCount  int64  `json:"view_count,omitempty"`
	Duration   int64  `json:"duration,omitempty"`    // seconds
	UploadDate string `json:"upload_date,omitempty"` // YYYYMMDD, may be empty until enriched
	URL        string `json:"url,omitempty"`
}

// WatchURL returns the video URL, deriving it from the ID when the listing
// did not carry one.
func (v VideoRecord) WatchURL() string {
	if v.URL != "" {
		return v.URL
	}
	return fmt.Sprintf(WatchURLTemplate, v.ID)
}

// IsPlaceholder reports whether this record stands in for a video that is no
// longer present in the cache.
func (v VideoRecord) IsPlaceholder() bool {
	return v.Title == UnknownTitle && v.ViewCount == 0 && v.Duration == 0
}

// GetDisplayTitle returns the title, or the URL when no title is known.
func (v VideoRecord) GetDisplayTitle() string {
	if v.Title != "" {
		return v.Title
	}
	return v.WatchURL()
}

// GetDurationString returns the duration as hh:mm:ss (or mm:ss under an
// hour), or "" if the duration is unknown.
func (v VideoRecord) GetDurationString() string {
	if v.Duration <= 0 {
		return ""
	}

	hours := v.Duration / SecondsPerHour
	minutes := (v.Duration % SecondsPerHour) / SecondsPerMinute
	seconds := v.Duration % SecondsPerMinute

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// GetUploadDateString returns the upload date formatted for display, or ""
// when the date is missing or malformed.
func (v VideoRecord) GetUploadDateString() string {
	if len(v.UploadDate) != len(UploadDateFormat) {
		return ""
	}
	t, err := time.Parse(UploadDateFormat, v.UploadDate)
	if err != nil {
		return ""
	}
	return t.Format(DisplayDateFormat)
}

// GetViewsString returns the view count formatted for display ("12,345
// views"), or "" when no count is known.
func (v VideoRecord) GetViewsString() string {
	if v.ViewCount <= 0 {
		return ""
	}
	return groupThousands(v.ViewCount) + " views"
}

// MetaLine joins the available metadata parts (date, views, duration) for the
// now-playing line. Empty when nothing is known yet.
func (v VideoRecord) MetaLine(separator string) string {
	var parts []string
	if s := v.GetUploadDateString(); s != "" {
		parts = append(parts, s)
	}
	if s := v.GetViewsString(); s != "" {
		parts = append(parts, s)
	}
	if s := v.GetDurationString(); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, separator)
}

// Merge overlays the metadata fields of other onto v, keeping v's identity.
// Used when a background detail fetch fills in fields the flat listing omits.
func (v VideoRecord) Merge(other VideoRecord) VideoRecord {
	merged := v
	if other.Title != "" {
		merged.Title = other.Title
	}
	if other.Channel != "" {
		merged.Channel = other.Channel
	}
	if other.ViewCount > 0 {
		merged.ViewCount = other.ViewCount
	}
	if other.Duration > 0 {
		merged.Duration = other.Duration
	}
	if other.UploadDate != "" {
		merged.UploadDate = other.UploadDate
	}
	return merged
}

// groupThousands formats n with comma separators.
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
