package config

import (
	"fyne.io/fyne/v2"
	"github.com/pixgrid/pix-grabber/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyExportDir        = "export_directory"
	KeyLanguage         = "app_language"
	KeyAutoRevealExport = "auto_reveal_on_export"
)

// Default values
const (
	DefaultLanguage         = "system"
	DefaultAutoRevealExport = true
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetExportDirectory returns the directory exported archives are saved to
func (s *Settings) GetExportDirectory() string {
	dir := s.app.Preferences().String(KeyExportDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = "/tmp/exports"
		}
		s.SetExportDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetExportDirectory sets the export directory
func (s *Settings) SetExportDirectory(dir string) {
	s.app.Preferences().SetString(KeyExportDir, dir)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetAutoRevealOnExport returns whether to reveal finished archives in the
// file manager
func (s *Settings) GetAutoRevealOnExport() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealExport, DefaultAutoRevealExport)
}

// SetAutoRevealOnExport sets whether to auto-reveal finished archives
func (s *Settings) SetAutoRevealOnExport(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealExport, autoReveal)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
	}
}
