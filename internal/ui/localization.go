package ui

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle         = "app_title"
	KeySearch           = "search"
	KeyEnterQuery       = "enter_query"
	KeySearching        = "searching"
	KeyNoResults        = "no_results"
	KeyFound            = "found"
	KeyExport           = "export"
	KeyExporting        = "exporting"
	KeyExportCompleted  = "export_completed"
	KeyExportFailed     = "export_failed"
	KeyNothingToExport  = "nothing_to_export"
	KeySkipped          = "skipped"
	KeyReveal           = "reveal"
	KeyOpen             = "open"
	KeySettings         = "settings"
	KeyFile             = "file"
	KeyLanguage         = "language"
	KeyExportDirectory  = "export_directory"
	KeyAutoReveal       = "auto_reveal"
	KeySave             = "save"
	KeyCancel           = "cancel"
	KeyBrowse           = "browse"
	KeySettingsSaved    = "settings_saved"
	KeyPleaseEnterQuery = "please_enter_query"
	KeyErrorOpeningFile = "error_opening_file"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:         "Pix Grabber",
		KeySearch:           "Search",
		KeyEnterQuery:       "Search images (e.g. sunset over mountains)",
		KeySearching:        "Searching...",
		KeyNoResults:        "No results found",
		KeyFound:            "Found",
		KeyExport:           "Export ZIP",
		KeyExporting:        "Exporting images...",
		KeyExportCompleted:  "Export completed",
		KeyExportFailed:     "Export failed",
		KeyNothingToExport:  "Nothing to export",
		KeySkipped:          "skipped",
		KeyReveal:           "Reveal",
		KeyOpen:             "Open",
		KeySettings:         "Settings",
		KeyFile:             "File",
		KeyLanguage:         "Language",
		KeyExportDirectory:  "Export Directory",
		KeyAutoReveal:       "Reveal archive after export",
		KeySave:             "Save",
		KeyCancel:           "Cancel",
		KeyBrowse:           "Browse",
		KeySettingsSaved:    "Settings saved successfully!",
		KeyPleaseEnterQuery: "Please enter a search query",
		KeyErrorOpeningFile: "Error opening file",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyAppTitle:         "Pix Grabber",
		KeySearch:           "Искать",
		KeyEnterQuery:       "Поиск изображений (например, закат в горах)",
		KeySearching:        "Поиск...",
		KeyNoResults:        "Ничего не найдено",
		KeyFound:            "Найдено",
		KeyExport:           "Экспорт ZIP",
		KeyExporting:        "Экспорт изображений...",
		KeyExportCompleted:  "Экспорт завершён",
		KeyExportFailed:     "Ошибка экспорта",
		KeyNothingToExport:  "Нечего экспортировать",
		KeySkipped:          "пропущено",
		KeyReveal:           "Показать",
		KeyOpen:             "Открыть",
		KeySettings:         "Настройки",
		KeyFile:             "Файл",
		KeyLanguage:         "Язык",
		KeyExportDirectory:  "Папка экспорта",
		KeyAutoReveal:       "Показывать архив после экспорта",
		KeySave:             "Сохранить",
		KeyCancel:           "Отмена",
		KeyBrowse:           "Обзор",
		KeySettingsSaved:    "Настройки успешно сохранены!",
		KeyPleaseEnterQuery: "Пожалуйста, введите поисковый запрос",
		KeyErrorOpeningFile: "Ошибка открытия файла",
	}
}
