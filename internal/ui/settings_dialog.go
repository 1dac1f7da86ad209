package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/0ccipital/youtube-shuffler/internal/config"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings *config.Settings
	window   fyne.Window
	dialog   *dialog.ConfirmDialog

	// UI components
	dataDirEntry     *widget.Entry
	cacheAgeEntry    *widget.Entry
	ytdlpPathEntry   *widget.Entry
	mpvPathEntry     *widget.Entry
	socketPathEntry  *widget.Entry
	audioFilterEntry *widget.Entry
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, window fyne.Window) *SettingsDialog {
	sd := &SettingsDialog{
		settings: settings,
		window:   window,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	// Data directory selection
	sd.dataDirEntry = widget.NewEntry()
	sd.dataDirEntry.SetPlaceHolder("Data directory path")

	browseDirBtn := widget.NewButton("Browse", sd.onBrowseDirectory)
	dataDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.dataDirEntry)

	// Cache freshness
	sd.cacheAgeEntry = widget.NewEntry()
	sd.cacheAgeEntry.SetPlaceHolder("1-720")

	// External tool paths
	sd.ytdlpPathEntry = widget.NewEntry()
	sd.ytdlpPathEntry.SetPlaceHolder("yt-dlp")

	sd.mpvPathEntry = widget.NewEntry()
	sd.mpvPathEntry.SetPlaceHolder("mpv")

	sd.socketPathEntry = widget.NewEntry()
	sd.socketPathEntry.SetPlaceHolder("mpv IPC socket path")

	sd.audioFilterEntry = widget.NewEntry()
	sd.audioFilterEntry.SetPlaceHolder("mpv --af filter chain (empty to disable)")

	// Create form
	form := container.NewVBox(
		widget.NewLabel("Storage"),
		widget.NewSeparator(),

		widget.NewLabel("Data Directory:"),
		dataDirRow,

		widget.NewLabel("Cache Max Age (hours):"),
		sd.cacheAgeEntry,

		widget.NewSeparator(),
		widget.NewLabel("External Tools"),
		widget.NewSeparator(),

		widget.NewLabel("yt-dlp Path:"),
		sd.ytdlpPathEntry,

		widget.NewLabel("mpv Path:"),
		sd.mpvPathEntry,

		widget.NewLabel("mpv IPC Socket:"),
		sd.socketPathEntry,

		widget.NewLabel("Audio Filter:"),
		sd.audioFilterEntry,
	)

	// Create dialog with buttons
	sd.dialog = dialog.NewCustomConfirm(
		"Settings",
		"Save",
		"Cancel",
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(520, 480))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.dataDirEntry.SetText(sd.settings.GetDataDirectory())
	sd.cacheAgeEntry.SetText(strconv.Itoa(int(sd.settings.GetCacheMaxAge().Hours())))
	sd.ytdlpPathEntry.SetText(sd.settings.GetYTDLPPath())
	sd.mpvPathEntry.SetText(sd.settings.GetMPVPath())
	sd.socketPathEntry.SetText(sd.settings.GetMPVSocketPath())
	sd.audioFilterEntry.SetText(sd.settings.GetMPVAudioFilter())
}

// onBrowseDirectory handles directory browsing
func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.dataDirEntry.SetText(uri.Path())
	}, sd.window)
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	if sd.dataDirEntry.Text != "" {
		sd.settings.SetDataDirectory(sd.dataDirEntry.Text)
	}

	if sd.cacheAgeEntry.Text != "" {
		if hours, err := strconv.Atoi(sd.cacheAgeEntry.Text); err == nil {
			sd.settings.SetCacheMaxAgeHours(hours)
		}
	}

	if sd.ytdlpPathEntry.Text != "" {
		sd.settings.SetYTDLPPath(sd.ytdlpPathEntry.Text)
	}
	if sd.mpvPathEntry.Text != "" {
		sd.settings.SetMPVPath(sd.mpvPathEntry.Text)
	}
	if sd.socketPathEntry.Text != "" {
		sd.settings.SetMPVSocketPath(sd.socketPathEntry.Text)
	}

	// Audio filter may be set to empty on purpose to disable filtering.
	sd.settings.SetMPVAudioFilter(sd.audioFilterEntry.Text)

	// Tool path and socket changes take effect on the next playback,
	// directory changes on next launch.
	dialog.ShowInformation("Settings", "Settings saved. Some changes take effect after restart.", sd.window)
}
