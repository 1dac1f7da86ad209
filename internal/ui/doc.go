// Package ui implements the Fyne desktop interface: the main window
// with channel selection and playback controls, the settings and
// dependencies dialogs, and the in-app activity log.
package ui
