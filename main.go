package main

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/0ccipital/youtube-shuffler/internal/cache"
	"github.com/0ccipital/youtube-shuffler/internal/config"
	"github.com/0ccipital/youtube-shuffler/internal/fetch"
	"github.com/0ccipital/youtube-shuffler/internal/logging"
	"github.com/0ccipital/youtube-shuffler/internal/platform"
	"github.com/0ccipital/youtube-shuffler/internal/player"
	"github.com/0ccipital/youtube-shuffler/internal/session"
	"github.com/0ccipital/youtube-shuffler/internal/shuffle"
	"github.com/0ccipital/youtube-shuffler/internal/state"
	"github.com/0ccipital/youtube-shuffler/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.0ccipital.youtube-shuffler"
	AppName = "YouTube Shuffler"
)

func main() {
	fmt.Printf("%s v%s starting...\n", AppName, version)

	// Create new Fyne app
	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewShuffleTheme())

	windowTitle := fmt.Sprintf("%s v%s", AppName, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	// Ensure data directories
	settings := config.NewSettings(myApp)
	for _, dir := range []string{settings.GetCacheDir(), settings.GetStateDir(), settings.GetLogDir()} {
		if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
			fmt.Printf("failed to ensure data dir %s: %v\n", dir, err)
		}
	}

	tap := logging.Init(settings.GetLogDir())
	logging.Log.Info().Str("version", version).Msg("application starting")

	// Initialize services
	fetcher := fetch.New()
	fetcher.Path = settings.GetYTDLPPath()

	caches := cache.NewStore(settings.GetCacheDir())
	states := state.NewStore(settings.GetStateDir())
	mpv := player.NewController(settings.GetMPVPath(), settings.GetMPVSocketPath(), settings.GetMPVAudioFilter())
	engine := shuffle.NewEngine()

	sess := session.New(fetcher, caches, states, mpv, engine, settings.GetCacheMaxAge())

	// Create and setup UI
	rootUI := ui.NewRootUI(myWindow, myApp, settings, sess, tap)

	// Surface missing external tools right away
	deps := platform.CheckDependencies(context.Background(), settings.GetYTDLPPath(), settings.GetMPVPath())
	if missing := platform.MissingDependencies(deps); len(missing) > 0 {
		logging.Log.Warn().Str("missing", strings.Join(missing, ", ")).Msg("external tools not found")
	}

	myWindow.SetCloseIntercept(func() {
		rootUI.Close()
		sess.Close()
		logging.Log.Info().Msg("application shutting down")
		myWindow.Close()
	})

	// Show and run
	myWindow.ShowAndRun()
}
