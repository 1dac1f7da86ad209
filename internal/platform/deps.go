package platform

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Dependency names
const (
	DepYTDLP = "yt-dlp"
	DepMPV   = "mpv"
)

// Timeouts for external tool invocations
const (
	VersionTimeout = 5 * time.Second
	UpdateTimeout  = 2 * time.Minute
)

// Dependency describes one required external tool.
type Dependency struct {
	Name      string
	Installed bool
	Version   string
}

// InstructionStep is a single install instruction line shown to the user.
type InstructionStep struct {
	Description string
	Command     string
}

// CheckCommand reports whether a command is available on PATH.
func CheckCommand(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}

// Version returns the first line of `<command> --version`, or "" when the
// command fails.
func Version(ctx context.Context, command string) string {
	ctx, cancel := context.WithTimeout(ctx, VersionTimeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, command, "--version")
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return ""
	}

	lines := strings.SplitN(strings.TrimSpace(stdout.String()), "\n", 2)
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[0])
}

// CheckDependencies checks the two external tools the app needs, using the
// configured paths.
func CheckDependencies(ctx context.Context, ytdlpPath, mpvPath string) []Dependency {
	deps := []Dependency{
		{Name: DepYTDLP, Installed: CheckCommand(ytdlpPath)},
		{Name: DepMPV, Installed: CheckCommand(mpvPath)},
	}

	if deps[0].Installed {
		deps[0].Version = Version(ctx, ytdlpPath)
	}
	if deps[1].Installed {
		deps[1].Version = Version(ctx, mpvPath)
	}

	return deps
}

// MissingDependencies returns the names of tools that are not installed.
func MissingDependencies(deps []Dependency) []string {
	var missing []string
	for _, dep := range deps {
		if !dep.Installed {
			missing = append(missing, dep.Name)
		}
	}
	return missing
}

// InstallInstructions returns platform-specific install commands based on the
// package managers present on the machine.
func InstallInstructions() []InstructionStep {
	switch runtime.GOOS {
	case OSDarwin:
		if CheckCommand("brew") {
			return []InstructionStep{
				{"Install yt-dlp", "brew install yt-dlp"},
				{"Install mpv", "brew install mpv"},
				{"Or visit", "https://github.com/yt-dlp/yt-dlp"},
				{"MPV info", "https://github.com/mpv-player/mpv"},
			}
		}
		return []InstructionStep{
			{"Install Homebrew first", `/bin/bash -c "$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh)"`},
			{"Then install yt-dlp", "brew install yt-dlp"},
			{"Then install mpv", "brew install mpv"},
			{"Or visit", "https://github.com/yt-dlp/yt-dlp"},
			{"MPV info", "https://github.com/mpv-player/mpv"},
		}
	case OSLinux:
		switch {
		case CheckCommand("apt"):
			return []InstructionStep{
				{"Update package list", "sudo apt update"},
				{"Install mpv", "sudo apt install mpv"},
				{"Install yt-dlp", "sudo apt install yt-dlp"},
				{"Or visit", "https://github.com/yt-dlp/yt-dlp"},
			}
		case CheckCommand("dnf"):
			return []InstructionStep{
				{"Install mpv", "sudo dnf install mpv"},
				{"For yt-dlp visit", "https://github.com/yt-dlp/yt-dlp"},
			}
		case CheckCommand("pacman"):
			return []InstructionStep{
				{"Install mpv", "sudo pacman -S mpv"},
				{"Install yt-dlp", "sudo pacman -S yt-dlp"},
			}
		}
	case OSWindows:
		switch {
		case CheckCommand("winget"):
			return []InstructionStep{
				{"Install mpv", "winget install mpv"},
				{"Install yt-dlp", "winget install yt-dlp"},
			}
		case CheckCommand("choco"):
			return []InstructionStep{
				{"Install mpv", "choco install mpv"},
				{"Install yt-dlp", "choco install yt-dlp"},
			}
		}
	}

	return []InstructionStep{
		{"yt-dlp info", "https://github.com/yt-dlp/yt-dlp"},
		{"MPV info", "https://github.com/mpv-player/mpv"},
	}
}

// UpdateYTDLP tries to update yt-dlp: Homebrew when present on macOS, then
// the tool's self-updater. Progress lines go to logf.
func UpdateYTDLP(ctx context.Context, ytdlpPath string, logf func(string)) bool {
	logf("Updating yt-dlp...")

	if runtime.GOOS == OSDarwin && CheckCommand("brew") {
		logf("Attempting update via Homebrew...")
		out, err := runUpdate(ctx, "brew", "upgrade", "yt-dlp")
		if err == nil || strings.Contains(strings.ToLower(out), "already installed") {
			logf("yt-dlp is up to date")
			return true
		}
		logf("Homebrew upgrade note: " + firstChars(out, 200))
	}

	if CheckCommand(ytdlpPath) {
		logf("Attempting self-update...")
		if _, err := runUpdate(ctx, ytdlpPath, "-U"); err == nil {
			logf("yt-dlp updated successfully")
			return true
		}
	}

	logf("Automatic update not available")
	logf("Please update manually, see https://github.com/yt-dlp/yt-dlp")
	return false
}

// UpdateMPV tries to update mpv through the platform package manager.
func UpdateMPV(ctx context.Context, logf func(string)) bool {
	logf("Updating mpv...")

	switch {
	case runtime.GOOS == OSDarwin && CheckCommand("brew"):
		out, err := runUpdate(ctx, "brew", "upgrade", "mpv")
		if err == nil || strings.Contains(strings.ToLower(out), "already installed") {
			logf("mpv is up to date")
			return true
		}
		logf("Note: " + firstChars(out, 200))
	case runtime.GOOS == OSWindows && CheckCommand("winget"):
		if _, err := runUpdate(ctx, "winget", "upgrade", "mpv"); err == nil {
			logf("mpv updated successfully")
			return true
		}
	}

	logf("Please update mpv using your package manager")
	logf("Visit https://github.com/mpv-player/mpv")
	return false
}

// runUpdate runs a package manager command with the update timeout and
// returns its combined output.
func runUpdate(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, UpdateTimeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}

func firstChars(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
