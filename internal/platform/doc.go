package platform

// Package platform provides OS integration: external tool discovery, version
// checks and updates for yt-dlp and mpv, platform-specific install
// instructions, and filesystem helpers.
