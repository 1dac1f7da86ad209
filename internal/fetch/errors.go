package fetch

import "fmt"

// Limit on how much raw tool output an error carries
const rawOutputLimit = 2048

// FetchError describes a failed yt-dlp invocation. RawOutput carries the
// tail of the tool's stderr/stdout for display and logging.
type FetchError struct {
	Reason    string
	RawOutput string
}

func (e *FetchError) Error() string {
	if e.RawOutput == "" {
		return fmt.Sprintf("fetch failed: %s", e.Reason)
	}
	return fmt.Sprintf("fetch failed: %s: %s", e.Reason, e.RawOutput)
}

// newFetchError builds a FetchError, truncating the raw output tail.
func newFetchError(reason, raw string) *FetchError {
	if len(raw) > rawOutputLimit {
		raw = raw[len(raw)-rawOutputLimit:]
	}
	return &FetchError{Reason: reason, RawOutput: raw}
}
