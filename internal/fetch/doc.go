package fetch

// Package fetch lists a channel's videos by invoking yt-dlp as a subprocess
// in flat-playlist mode and parsing its JSON output into video records. The
// tool is treated as opaque: non-zero exit, empty output, or unparsable JSON
// surface as a single FetchError, and malformed individual entries are
// skipped rather than failing the whole listing.
