package fetch

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/0ccipital/youtube-shuffler/internal/model"
)

const (
	defaultBinary = "yt-dlp"

	// Channel listings can be large; per-video detail is quick.
	defaultListTimeout   = 2 * time.Minute
	defaultDetailTimeout = 30 * time.Second
)

// Fetcher lists channel videos using yt-dlp as a subprocess.
type Fetcher struct {
	// Path is the path to the yt-dlp executable. Defaults to "yt-dlp".
	Path string

	// Timeout is the maximum time to wait for a channel listing.
	Timeout time.Duration

	// ExtraArgs are additional arguments passed to yt-dlp.
	ExtraArgs []string
}

// New creates a fetcher with default binary and timeout.
func New() *Fetcher {
	return &Fetcher{
		Path:    defaultBinary,
		Timeout: defaultListTimeout,
	}
}

// Fetch lists all videos of the channel. The URL is normalized to the
// channel's /videos tab first. Cancelling ctx kills the subprocess.
func (f *Fetcher) Fetch(ctx context.Context, channelURL string) ([]model.VideoRecord, error) {
	url, err := NormalizeChannelURL(channelURL)
	if err != nil {
		return nil, newFetchError(err.Error(), "")
	}

	if err := f.checkInstalled(ctx); err != nil {
		return nil, err
	}

	args := []string{
		"--flat-playlist",
		"--dump-single-json",
		"--no-warnings",
	}
	args = append(args, f.ExtraArgs...)
	args = append(args, url)

	stdout, err := f.run(ctx, f.listTimeout(), args)
	if err != nil {
		return nil, err
	}

	records, err := parseFlatListing(stdout)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, newFetchError("no videos found in channel", "")
	}
	return records, nil
}

// FetchVideoDetail fetches full metadata for a single video. The flat
// listing omits upload date, views and duration; this fills them in.
func (f *Fetcher) FetchVideoDetail(ctx context.Context, videoURL string) (model.VideoRecord, error) {
	args := []string{
		"--dump-single-json",
		"--no-warnings",
		videoURL,
	}

	stdout, err := f.run(ctx, defaultDetailTimeout, args)
	if err != nil {
		return model.VideoRecord{}, err
	}
	return parseVideoDetail(stdout)
}

// run executes yt-dlp with the given timeout and returns its stdout.
func (f *Fetcher) run(ctx context.Context, timeout time.Duration, args []string) ([]byte, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, f.path(), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return nil, newFetchError("request timed out", stderr.String())
		}
		if ctx.Err() == context.Canceled {
			return nil, ctx.Err()
		}
		return nil, newFetchError(fmt.Sprintf("yt-dlp failed: %v", err), stderr.String())
	}

	if stdout.Len() == 0 {
		return nil, newFetchError("no data returned from yt-dlp", stderr.String())
	}
	return stdout.Bytes(), nil
}

// checkInstalled verifies that yt-dlp is available.
func (f *Fetcher) checkInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, f.path(), "--version")
	if err := cmd.Run(); err != nil {
		return newFetchError("yt-dlp is not installed", "")
	}
	return nil
}

func (f *Fetcher) path() string {
	if f.Path != "" {
		return f.Path
	}
	return defaultBinary
}

func (f *Fetcher) listTimeout() time.Duration {
	if f.Timeout > 0 {
		return f.Timeout
	}
	return defaultListTimeout
}

// NormalizeChannelURL validates a channel URL and ensures it points at the
// channel's /videos tab.
func NormalizeChannelURL(url string) (string, error) {
	url = strings.TrimSpace(url)
	url = strings.TrimRight(url, "/")

	if url == "" {
		return "", fmt.Errorf("empty URL")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", fmt.Errorf("URL must start with http:// or https://")
	}
	if !strings.Contains(url, "youtube.com") && !strings.Contains(url, "youtu.be") {
		return "", fmt.Errorf("URL must be a YouTube URL")
	}

	isChannelPath := strings.Contains(url, "/@") ||
		strings.Contains(url, "/c/") ||
		strings.Contains(url, "/user/") ||
		strings.Contains(url, "/channel/")
	if isChannelPath && !strings.HasSuffix(url, "/videos") {
		url += "/videos"
	}

	return url, nil
}
