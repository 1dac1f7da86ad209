package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/0ccipital/youtube-shuffler/internal/config"
	"github.com/0ccipital/youtube-shuffler/internal/logging"
	"github.com/0ccipital/youtube-shuffler/internal/model"
	"github.com/0ccipital/youtube-shuffler/internal/session"
	"github.com/0ccipital/youtube-shuffler/internal/shuffle"
)

// RootUI represents the main window structure
type RootUI struct {
	window   fyne.Window
	app      fyne.App
	settings *config.Settings
	session  *session.Session

	// Channel selection
	channelEntry  *widget.Entry
	channelSelect *widget.Select
	loadBtn       *widget.Button
	forceCheck    *widget.Check
	newShuffleBtn *widget.Button

	// Now playing
	titleLabel    *widget.Label
	metaLabel     *widget.Label
	positionLabel *widget.Label

	// Playback controls
	prevBtn *widget.Button
	playBtn *widget.Button
	nextBtn *widget.Button

	// Player status indicator
	statusLabel *widget.Label
	statusStop  chan struct{}

	// Notification panel
	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite

	// Activity log view
	logView  *widget.Label
	logLines []string
	logMu    sync.Mutex

	// Current video under the cursor
	current    model.VideoRecord
	hasCurrent bool
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, settings *config.Settings, sess *session.Session, tap *logging.GUITap) *RootUI {
	ui := &RootUI{
		window:     window,
		app:        app,
		settings:   settings,
		session:    sess,
		statusStop: make(chan struct{}),
	}

	window.SetTitle("YouTube Shuffler")

	ui.setupUI()
	ui.setupShortcuts()

	if tap != nil {
		tap.SetCallback(ui.appendLogLine)
	}

	ui.startStatusPoller()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	// Channel URL entry with history dropdown
	ui.channelEntry = widget.NewEntry()
	ui.channelEntry.SetPlaceHolder("Channel URL (e.g. https://www.youtube.com/@channel)")
	ui.channelEntry.OnSubmitted = func(string) {
		if !ui.loadBtn.Disabled() {
			ui.onLoadClick()
		}
	}

	ui.channelSelect = widget.NewSelect(ui.session.RecentChannels(), func(selected string) {
		ui.channelEntry.SetText(selected)
	})
	ui.channelSelect.PlaceHolder = "Recent channels"

	ui.loadBtn = widget.NewButton("Load", ui.onLoadClick)
	ui.forceCheck = widget.NewCheck("Force update", nil)
	ui.newShuffleBtn = widget.NewButton("New Shuffle", ui.onNewShuffleClick)
	ui.newShuffleBtn.Disable()

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance
	depsBtn := widget.NewButton(IconTools, ui.onShowDependencies)
	depsBtn.Importance = widget.LowImportance

	urlRow := container.NewBorder(nil, nil, nil, ui.loadBtn, ui.channelEntry)
	optionsRow := container.NewHBox(ui.channelSelect, ui.forceCheck, ui.newShuffleBtn, settingsBtn, depsBtn)

	// Notification panel under the channel row (hidden by default)
	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Alignment = fyne.TextAlignLeading
	ui.notificationLabel.Wrapping = fyne.TextWrapWord
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewBorder(nil, nil, nil, nil,
		container.NewVBox(ui.notificationSpinner, ui.notificationLabel))
	ui.notificationContainer.Hide()

	// Now playing panel
	ui.titleLabel = widget.NewLabel("No video loaded")
	ui.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	ui.titleLabel.Wrapping = fyne.TextWrapWord
	ui.titleLabel.Alignment = fyne.TextAlignCenter

	ui.metaLabel = widget.NewLabel("")
	ui.metaLabel.Alignment = fyne.TextAlignCenter

	ui.positionLabel = widget.NewLabel("")
	ui.positionLabel.Alignment = fyne.TextAlignCenter

	// Playback controls
	ui.prevBtn = widget.NewButton(IconPrevious, ui.onPreviousClick)
	ui.playBtn = widget.NewButton(IconPlay, ui.onPlayClick)
	ui.nextBtn = widget.NewButton(IconNext, ui.onNextClick)
	ui.prevBtn.Disable()
	ui.playBtn.Disable()
	ui.nextBtn.Disable()

	controls := container.NewHBox(ui.prevBtn, ui.playBtn, ui.nextBtn)

	ui.statusLabel = widget.NewLabel(PlayerStatusStopped)
	ui.statusLabel.Alignment = fyne.TextAlignCenter

	playerPanel := container.NewVBox(
		widget.NewSeparator(),
		ui.titleLabel,
		ui.metaLabel,
		ui.positionLabel,
		container.NewCenter(controls),
		ui.statusLabel,
		widget.NewSeparator(),
	)

	// Activity log
	ui.logView = widget.NewLabel("")
	ui.logView.Wrapping = fyne.TextWrapWord
	ui.logView.TextStyle = fyne.TextStyle{Monospace: true}
	logScroll := container.NewVScroll(ui.logView)
	logScroll.SetMinSize(fyne.NewSize(0, LogViewMinHeight))

	top := container.NewVBox(urlRow, optionsRow, ui.notificationContainer, playerPanel)

	content := container.NewBorder(
		top,       // top
		nil,       // bottom
		nil,       // left
		nil,       // right
		logScroll, // center
	)

	ui.window.SetContent(content)
}

// setupShortcuts wires keyboard navigation: left/right step through
// history, space replays the current video.
func (ui *RootUI) setupShortcuts() {
	ui.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyLeft:
			if !ui.prevBtn.Disabled() {
				ui.onPreviousClick()
			}
		case fyne.KeyRight:
			if !ui.nextBtn.Disabled() {
				ui.onNextClick()
			}
		case fyne.KeySpace:
			if !ui.playBtn.Disabled() {
				ui.onPlayClick()
			}
		}
	})
}

// onLoadClick handles the Load button
func (ui *RootUI) onLoadClick() {
	urlText := strings.TrimSpace(ui.channelEntry.Text)
	if urlText == "" {
		ui.showNotification("Please enter a channel URL", false)
		return
	}

	force := ui.forceCheck.Checked
	if force {
		ui.showNotification("Fetching fresh channel listing…", true)
	} else {
		ui.showNotification("Loading channel…", true)
	}
	ui.loadBtn.Disable()

	err := ui.session.LoadChannel(context.Background(), urlText, force, func(res *session.LoadResult, err error) {
		fyne.Do(func() {
			ui.loadBtn.Enable()
			if err != nil {
				ui.showNotification("Load failed: "+err.Error(), false)
				return
			}
			ui.applyLoadResult(res)
		})
	})
	if err != nil {
		ui.loadBtn.Enable()
		if errors.Is(err, session.ErrLoadInFlight) {
			ui.showNotification("Already loading this channel", true)
			return
		}
		ui.showNotification("Invalid channel URL: "+err.Error(), false)
	}
}

// applyLoadResult updates the window after a channel load. Runs on the
// UI thread.
func (ui *RootUI) applyLoadResult(res *session.LoadResult) {
	name := res.Cache.ChannelName()
	count := len(res.Cache.Records)

	switch {
	case res.Warning != "":
		ui.showNotification(res.Warning, false)
	case res.Resumed:
		ui.showNotification(fmt.Sprintf("Loaded %s (%d videos), resumed previous shuffle", name, count), false)
	default:
		ui.showNotification(fmt.Sprintf("Loaded %s (%d videos)", name, count), false)
	}

	ui.channelSelect.Options = ui.session.RecentChannels()
	ui.channelSelect.Refresh()
	ui.forceCheck.SetChecked(false)

	ui.newShuffleBtn.Enable()
	ui.nextBtn.Enable()
	ui.playBtn.Disable()

	if rec, ok := ui.session.Current(); ok {
		ui.setCurrent(rec)
	} else {
		ui.hasCurrent = false
		ui.titleLabel.SetText(fmt.Sprintf("%s loaded, press %s to start", name, IconNext))
		ui.metaLabel.SetText("")
		ui.positionLabel.SetText("")
	}
	ui.refreshControls()
}

// onNextClick advances the shuffle and plays the video.
func (ui *RootUI) onNextClick() {
	rec, err := ui.session.Next()
	if err != nil {
		if errors.Is(err, shuffle.ErrEmptyChannel) {
			ui.showNotification("This channel has no playable videos", false)
			ui.nextBtn.Disable()
			ui.playBtn.Disable()
			return
		}
		ui.showNotification("Could not pick next video: "+err.Error(), false)
		return
	}
	ui.setCurrent(rec)
	ui.playCurrent()
}

// onPreviousClick steps back through history and plays the video.
func (ui *RootUI) onPreviousClick() {
	rec, err := ui.session.Previous()
	if err != nil {
		if errors.Is(err, shuffle.ErrNoHistory) {
			ui.showNotification("Already at the start of history", false)
			ui.refreshControls()
			return
		}
		ui.showNotification("Could not step back: "+err.Error(), false)
		return
	}
	ui.setCurrent(rec)
	ui.playCurrent()
}

// onPlayClick replays the video under the cursor.
func (ui *RootUI) onPlayClick() {
	if !ui.hasCurrent {
		return
	}
	ui.playCurrent()
}

// onNewShuffleClick clears history after confirmation.
func (ui *RootUI) onNewShuffleClick() {
	dialog.ShowConfirm("New Shuffle",
		"Discard watch history for this channel and start over?",
		func(confirmed bool) {
			if !confirmed {
				return
			}
			if err := ui.session.NewShuffle(); err != nil {
				ui.showNotification("Could not reset shuffle: "+err.Error(), false)
				return
			}
			ui.hasCurrent = false
			ui.titleLabel.SetText(fmt.Sprintf("Fresh shuffle, press %s to start", IconNext))
			ui.metaLabel.SetText("")
			ui.positionLabel.SetText("")
			ui.playBtn.Disable()
			ui.refreshControls()
		}, ui.window)
}

// playCurrent hands the current video to the player. The launch runs
// in the background so a cold player start cannot freeze the window.
func (ui *RootUI) playCurrent() {
	rec := ui.current
	ui.session.Play(rec,
		func(merged model.VideoRecord) {
			fyne.Do(func() {
				// The played video may no longer be current by the time
				// enrichment lands.
				if ui.hasCurrent && ui.current.ID == merged.ID {
					ui.setCurrent(merged)
				}
			})
		},
		func(err error) {
			if err != nil {
				ui.showNotification("Could not start playback: "+err.Error(), false)
				return
			}
			fyne.Do(ui.playBtn.Enable)
			ui.hideNotification()
		})
}

// setCurrent updates the now-playing panel. Runs on the UI thread.
func (ui *RootUI) setCurrent(rec model.VideoRecord) {
	ui.current = rec
	ui.hasCurrent = true

	ui.titleLabel.SetText(rec.GetDisplayTitle())

	meta := rec.MetaLine(MetaSeparator)
	if meta == "" {
		meta = DashPlaceholder
	}
	ui.metaLabel.SetText(meta)

	pos, total := ui.session.Position()
	if total > 0 {
		ui.positionLabel.SetText(fmt.Sprintf(PositionFormat, pos, total))
	} else {
		ui.positionLabel.SetText("")
	}

	ui.playBtn.Enable()
	ui.refreshControls()
}

// refreshControls syncs button enablement with the history cursor.
func (ui *RootUI) refreshControls() {
	if ui.session.CanStepBack() {
		ui.prevBtn.Enable()
	} else {
		ui.prevBtn.Disable()
	}
}

// startStatusPoller watches the external player in the background.
func (ui *RootUI) startStatusPoller() {
	go func() {
		ticker := time.NewTicker(PlayerStatusPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ui.statusStop:
				return
			case <-ticker.C:
				running := ui.session.PlayerRunning()
				fyne.Do(func() {
					if running {
						ui.statusLabel.SetText(PlayerStatusRunning)
					} else {
						ui.statusLabel.SetText(PlayerStatusStopped)
					}
				})
			}
		}
	}()
}

// Close stops background UI work. Call before tearing down the session.
func (ui *RootUI) Close() {
	close(ui.statusStop)
}

// appendLogLine feeds one formatted log line into the in-app log view.
// Called from the logging goroutine.
func (ui *RootUI) appendLogLine(line string) {
	ui.logMu.Lock()
	ui.logLines = append(ui.logLines, strings.TrimRight(line, "\n"))
	if len(ui.logLines) > LogViewMaxLines {
		ui.logLines = ui.logLines[len(ui.logLines)-LogViewMaxLines:]
	}
	text := strings.Join(ui.logLines, "\n")
	ui.logMu.Unlock()

	fyne.Do(func() {
		ui.logView.SetText(text)
	})
}

// showNotification displays a message in the notification panel.
// When spinning is true, a spinner indicates background activity.
func (ui *RootUI) showNotification(message string, spinning bool) {
	fyne.Do(func() {
		ui.notificationLabel.SetText(message)
		if spinning {
			ui.notificationSpinner.Show()
		} else {
			ui.notificationSpinner.Hide()
		}
		ui.notificationContainer.Show()
		ui.notificationContainer.Refresh()
	})
}

// hideNotification hides the notification panel.
func (ui *RootUI) hideNotification() {
	fyne.Do(func() {
		ui.notificationSpinner.Hide()
		ui.notificationContainer.Hide()
	})
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.window).Show()
}

// onShowDependencies shows the external tools dialog
func (ui *RootUI) onShowDependencies() {
	ShowDependenciesDialog(ui.window, ui.settings)
}
