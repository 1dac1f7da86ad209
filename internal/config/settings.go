package config

import (
	"path/filepath"
	"runtime"
	"time"

	"fyne.io/fyne/v2"

	"github.com/0ccipital/youtube-shuffler/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyDataDir        = "data_directory"
	KeyCacheMaxAgeHrs = "cache_max_age_hours"
	KeyYTDLPPath      = "ytdlp_path"
	KeyMPVPath        = "mpv_path"
	KeyMPVSocketPath  = "mpv_socket_path"
	KeyMPVAudioFilter = "mpv_audio_filter"
)

// Default values
const (
	DefaultCacheMaxAgeHrs = 24
	DefaultYTDLPPath      = "yt-dlp"
	DefaultMPVPath        = "mpv"

	// Loudness leveling for mixed-volume channels: dynamic normalizer plus a
	// brickwall limiter.
	DefaultMPVAudioFilter = "lavfi=[dynaudnorm=f=350:g=10:p=0.45:n=1],lavfi=[alimiter=limit=0.90:attack=5:release=40]"
)

// Clamp bounds for the cache max age
const (
	MinCacheMaxAgeHrs = 1
	MaxCacheMaxAgeHrs = 720
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDataDirectory returns the root directory holding cache, state and logs.
func (s *Settings) GetDataDirectory() string {
	dir := s.app.Preferences().String(KeyDataDir)
	if dir == "" {
		defaultDir, err := platform.DefaultDataDir()
		if err != nil {
			defaultDir = "."
		}
		s.SetDataDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDataDirectory sets the data directory
func (s *Settings) SetDataDirectory(dir string) {
	s.app.Preferences().SetString(KeyDataDir, dir)
}

// GetCacheDir returns the directory holding per-channel listing caches.
func (s *Settings) GetCacheDir() string {
	return filepath.Join(s.GetDataDirectory(), "cache")
}

// GetStateDir returns the directory holding per-channel shuffle state.
func (s *Settings) GetStateDir() string {
	return filepath.Join(s.GetDataDirectory(), "state")
}

// GetLogDir returns the directory holding the activity log.
func (s *Settings) GetLogDir() string {
	return filepath.Join(s.GetDataDirectory(), "logs")
}

// GetCacheMaxAge returns how long a channel listing stays fresh.
func (s *Settings) GetCacheMaxAge() time.Duration {
	hours := s.app.Preferences().Int(KeyCacheMaxAgeHrs)
	if hours <= 0 {
		s.SetCacheMaxAgeHours(DefaultCacheMaxAgeHrs)
		return DefaultCacheMaxAgeHrs * time.Hour
	}
	return time.Duration(hours) * time.Hour
}

// SetCacheMaxAgeHours sets the cache freshness threshold in hours.
func (s *Settings) SetCacheMaxAgeHours(hours int) {
	if hours < MinCacheMaxAgeHrs {
		hours = MinCacheMaxAgeHrs
	}
	if hours > MaxCacheMaxAgeHrs {
		hours = MaxCacheMaxAgeHrs
	}
	s.app.Preferences().SetInt(KeyCacheMaxAgeHrs, hours)
}

// GetYTDLPPath returns the yt-dlp executable path or name.
func (s *Settings) GetYTDLPPath() string {
	path := s.app.Preferences().String(KeyYTDLPPath)
	if path == "" {
		s.SetYTDLPPath(DefaultYTDLPPath)
		return DefaultYTDLPPath
	}
	return path
}

// SetYTDLPPath sets the yt-dlp executable path
func (s *Settings) SetYTDLPPath(path string) {
	if path == "" {
		path = DefaultYTDLPPath
	}
	s.app.Preferences().SetString(KeyYTDLPPath, path)
}

// GetMPVPath returns the mpv executable path or name.
func (s *Settings) GetMPVPath() string {
	path := s.app.Preferences().String(KeyMPVPath)
	if path == "" {
		s.SetMPVPath(DefaultMPVPath)
		return DefaultMPVPath
	}
	return path
}

// SetMPVPath sets the mpv executable path
func (s *Settings) SetMPVPath(path string) {
	if path == "" {
		path = DefaultMPVPath
	}
	s.app.Preferences().SetString(KeyMPVPath, path)
}

// GetMPVSocketPath returns the mpv IPC socket path.
func (s *Settings) GetMPVSocketPath() string {
	path := s.app.Preferences().String(KeyMPVSocketPath)
	if path == "" {
		path = defaultSocketPath()
		s.app.Preferences().SetString(KeyMPVSocketPath, path)
	}
	return path
}

// SetMPVSocketPath sets the mpv IPC socket path
func (s *Settings) SetMPVSocketPath(path string) {
	if path == "" {
		path = defaultSocketPath()
	}
	s.app.Preferences().SetString(KeyMPVSocketPath, path)
}

// GetMPVAudioFilter returns the mpv --af chain, "" to disable filtering.
func (s *Settings) GetMPVAudioFilter() string {
	return s.app.Preferences().StringWithFallback(KeyMPVAudioFilter, DefaultMPVAudioFilter)
}

// SetMPVAudioFilter sets the mpv --af chain.
func (s *Settings) SetMPVAudioFilter(filter string) {
	s.app.Preferences().SetString(KeyMPVAudioFilter, filter)
}

// defaultSocketPath picks a platform-appropriate IPC endpoint for mpv.
func defaultSocketPath() string {
	if runtime.GOOS == platform.OSWindows {
		return `\\.\pipe\mpv-shuffle-socket`
	}
	return filepath.Join(platform.TempDir(), "mpv-shuffle-socket")
}
