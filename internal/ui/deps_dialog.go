package ui

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/0ccipital/youtube-shuffler/internal/config"
	"github.com/0ccipital/youtube-shuffler/internal/platform"
)

// ShowDependenciesDialog displays external tool status with install
// instructions and update actions.
func ShowDependenciesDialog(window fyne.Window, settings *config.Settings) {
	deps := platform.CheckDependencies(context.Background(), settings.GetYTDLPPath(), settings.GetMPVPath())

	rows := container.NewVBox()
	for _, dep := range deps {
		status := "✅ " + dep.Name
		if dep.Version != "" {
			status += "  " + dep.Version
		}
		if !dep.Installed {
			status = "❌ " + dep.Name + "  not found"
		}
		label := widget.NewLabel(status)
		label.TextStyle = fyne.TextStyle{Monospace: true}
		rows.Add(label)
	}

	if missing := platform.MissingDependencies(deps); len(missing) > 0 {
		rows.Add(widget.NewSeparator())
		rows.Add(widget.NewLabel(fmt.Sprintf("Missing: %s. Install with:", strings.Join(missing, ", "))))
		for _, step := range platform.InstallInstructions() {
			rows.Add(widget.NewLabel(step.Description))
			cmd := widget.NewLabel("  " + step.Command)
			cmd.TextStyle = fyne.TextStyle{Monospace: true}
			rows.Add(cmd)
		}
	}

	// Update actions with a streaming output view
	output := widget.NewLabel("")
	output.Wrapping = fyne.TextWrapWord
	output.TextStyle = fyne.TextStyle{Monospace: true}

	logf := func(line string) {
		fyne.Do(func() {
			output.SetText(strings.TrimSpace(output.Text + "\n" + line))
		})
	}

	updateYTDLPBtn := widget.NewButton("Update yt-dlp", nil)
	updateMPVBtn := widget.NewButton("Update mpv", nil)

	updateYTDLPBtn.OnTapped = func() {
		updateYTDLPBtn.Disable()
		go func() {
			ok := platform.UpdateYTDLP(context.Background(), settings.GetYTDLPPath(), logf)
			if ok {
				logf("yt-dlp update finished")
			} else {
				logf("yt-dlp update failed")
			}
			fyne.Do(updateYTDLPBtn.Enable)
		}()
	}

	updateMPVBtn.OnTapped = func() {
		updateMPVBtn.Disable()
		go func() {
			ok := platform.UpdateMPV(context.Background(), logf)
			if ok {
				logf("mpv update finished")
			} else {
				logf("mpv update failed")
			}
			fyne.Do(updateMPVBtn.Enable)
		}()
	}

	rows.Add(widget.NewSeparator())
	rows.Add(container.NewHBox(updateYTDLPBtn, updateMPVBtn))

	outputScroll := container.NewVScroll(output)
	outputScroll.SetMinSize(fyne.NewSize(0, 120))
	rows.Add(outputScroll)

	d := dialog.NewCustom("External Tools", "Close", rows, window)
	d.Resize(fyne.NewSize(520, 440))
	d.Show()
}
