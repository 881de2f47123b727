package ui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/pixgrid/pix-grabber/internal/config"
	"github.com/pixgrid/pix-grabber/internal/grid"
	"github.com/pixgrid/pix-grabber/internal/model"
	"github.com/pixgrid/pix-grabber/internal/platform"
)

// RootUI represents the main UI structure
type RootUI struct {
	window     fyne.Window
	controller *grid.Controller

	queryEntry *widget.Entry
	searchBtn  *widget.Button

	resultGrid *widget.GridWrap
	errorLabel *widget.Label
	errorBox   *fyne.Container

	prevBtn    *widget.Button
	nextBtn    *widget.Button
	pageLabel  *widget.Label
	totalLabel *widget.Label
	exportBtn  *widget.Button

	settings     *config.Settings
	localization *Localization

	// snapshot is the grid state the widgets render from. It is replaced
	// wholesale on every controller update and read by the GridWrap
	// callbacks, so slot data never has to be pulled mid-render.
	snapshotMutex sync.RWMutex
	snapshot      grid.Snapshot

	// Notification panel
	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, controller *grid.Controller) *RootUI {
	// Initialize settings
	settings := config.NewSettings(app)

	// Initialize localization
	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	// Ensure the export directory exists up front
	platform.CreateDirectoryIfNotExists(settings.GetExportDirectory())

	ui := &RootUI{
		window:       window,
		controller:   controller,
		settings:     settings,
		localization: localization,
	}

	// Set window title
	window.SetTitle(localization.GetText(KeyAppTitle))

	// Re-render on every grid state change
	ui.controller.SetUpdateCallback(ui.onGridUpdate)

	ui.setupUI()

	ui.snapshot = controller.Snapshot()
	ui.renderSnapshot()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	// Create menu
	ui.createMenu()

	// Create query entry
	ui.queryEntry = widget.NewEntry()
	ui.queryEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterQuery))
	// Trigger search when user presses Enter in the query field
	ui.queryEntry.OnSubmitted = func(string) {
		ui.onSearchClick()
	}

	// Create search button
	ui.searchBtn = widget.NewButton(ui.localization.GetText(KeySearch), ui.onSearchClick)
	ui.searchBtn.Importance = widget.HighImportance

	// Create settings button
	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	// Create logo
	logo, err := LoadLogoResource()
	var logoImage *canvas.Image
	if err == nil {
		logoImage = canvas.NewImageFromResource(logo)
		logoImage.SetMinSize(fyne.NewSize(LogoSize, LogoSize))
		logoImage.FillMode = canvas.ImageFillContain
	} else {
		// Fallback to text if logo loading fails
		logoImage = nil
	}

	// Create top panel (query row) with logo
	var topPanel *fyne.Container
	if logoImage != nil {
		topPanel = container.NewBorder(nil, nil, container.NewHBox(logoImage, settingsBtn), ui.searchBtn, ui.queryEntry)
	} else {
		topPanel = container.NewBorder(nil, nil, container.NewHBox(settingsBtn), ui.searchBtn, ui.queryEntry)
	}

	// Create notification panel under the query row (hidden by default)
	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Alignment = fyne.TextAlignLeading
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewHBox(ui.notificationSpinner, container.NewPadded(ui.notificationLabel))
	ui.notificationContainer.Hide()

	// Combine query row and notification panel at the top
	topCombined := container.NewVBox(topPanel, ui.notificationContainer)

	// Create result grid
	ui.resultGrid = widget.NewGridWrap(
		func() int {
			return len(ui.currentSnapshot().Slots)
		},
		func() fyne.CanvasObject { return ui.createTile() },
		func(id widget.GridWrapItemID, obj fyne.CanvasObject) { ui.updateTile(id, obj) },
	)

	// Provider errors replace the whole result view
	ui.errorLabel = widget.NewLabel("")
	ui.errorLabel.Alignment = fyne.TextAlignCenter
	ui.errorLabel.Wrapping = fyne.TextWrapWord
	ui.errorLabel.Importance = widget.DangerImportance
	ui.errorBox = container.NewCenter(ui.errorLabel)
	ui.errorBox.Hide()

	gridArea := container.NewStack(ui.resultGrid, ui.errorBox)
	pager := NewSwipePager(gridArea, ui.controller.NextPage, ui.controller.PrevPage, ui.controller.Reload)

	// Create bottom panel: page navigation on the left, export on the right
	ui.prevBtn = widget.NewButton(IconPrev, ui.controller.PrevPage)
	ui.nextBtn = widget.NewButton(IconNext, ui.controller.NextPage)
	ui.pageLabel = widget.NewLabel("")
	ui.pageLabel.Alignment = fyne.TextAlignCenter
	ui.totalLabel = widget.NewLabel("")
	ui.totalLabel.Alignment = fyne.TextAlignTrailing
	ui.exportBtn = widget.NewButton(ui.localization.GetText(KeyExport), ui.onExportClick)
	ui.exportBtn.Importance = widget.HighImportance
	ui.exportBtn.Disable()

	pagerRow := container.NewHBox(ui.prevBtn, ui.pageLabel, ui.nextBtn)
	bottomPanel := container.NewBorder(nil, nil, pagerRow, ui.exportBtn, ui.totalLabel)

	// Create main layout
	content := container.NewBorder(
		topCombined, // top
		bottomPanel, // bottom
		nil,         // left
		nil,         // right
		pager,       // center - swipeable result grid
	)

	ui.window.SetContent(content)

	log.Printf("UI setup completed successfully")
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	// Settings menu item
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	// Language submenu
	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))

	availableLanguages := ui.localization.GetAvailableLanguages()
	for code, name := range availableLanguages {
		langCode := code // Capture for closure
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})

		// Mark current language
		if ui.localization.GetCurrentLanguage() == code {
			langItem.Checked = true
		}

		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	// Create main menu
	mainMenu := fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	)

	ui.window.SetMainMenu(mainMenu)
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	// Update localization
	ui.localization.SetLanguage(langCode)

	// Save to settings
	ui.settings.SetLanguage(langCode)

	// Update UI texts
	ui.refreshUITexts()

	// Recreate menu to update checkmarks
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	// Update window title
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))

	// Update UI elements
	ui.queryEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterQuery))
	ui.searchBtn.SetText(ui.localization.GetText(KeySearch))
	ui.exportBtn.SetText(ui.localization.GetText(KeyExport))

	// Re-render so totals and notifications pick up the new language
	ui.renderSnapshot()
}

// currentSnapshot returns the grid state the widgets render from
func (ui *RootUI) currentSnapshot() grid.Snapshot {
	ui.snapshotMutex.RLock()
	defer ui.snapshotMutex.RUnlock()
	return ui.snapshot
}

// onGridUpdate handles state change notifications from the grid controller.
// The controller fires it from arbitrary goroutines, so rendering hops onto
// the UI thread.
func (ui *RootUI) onGridUpdate() {
	snap := ui.controller.Snapshot()

	ui.snapshotMutex.Lock()
	ui.snapshot = snap
	ui.snapshotMutex.Unlock()

	fyne.Do(func() {
		ui.renderSnapshot()
	})
}

// renderSnapshot re-renders all widgets from the cached snapshot
func (ui *RootUI) renderSnapshot() {
	snap := ui.currentSnapshot()

	// Notification panel doubles as the busy indicator
	switch {
	case snap.Loading:
		ui.showNotification(ui.localization.GetText(KeySearching), true)
	case snap.Exporting:
		ui.showNotification(ui.localization.GetText(KeyExporting), true)
	default:
		ui.hideNotification()
	}

	// A failed page load replaces the result view with the error
	if snap.LastError != "" {
		ui.errorLabel.SetText(IconError + " " + snap.LastError)
		ui.errorBox.Show()
		ui.resultGrid.Hide()
	} else {
		ui.errorBox.Hide()
		ui.resultGrid.Show()
	}

	// Pager state
	ui.pageLabel.SetText(fmt.Sprintf(PageLabelFormat, snap.Page, grid.MaxPage))
	if snap.CanPrev {
		ui.prevBtn.Enable()
	} else {
		ui.prevBtn.Disable()
	}
	if snap.CanNext {
		ui.nextBtn.Enable()
	} else {
		ui.nextBtn.Disable()
	}

	// Show the provider's total estimate once a query ran
	if snap.Query == "" {
		ui.totalLabel.SetText("")
	} else if snap.Total == 0 && !snap.Loading {
		ui.totalLabel.SetText(ui.localization.GetText(KeyNoResults))
	} else {
		ui.totalLabel.SetText(fmt.Sprintf("%s: %d", ui.localization.GetText(KeyFound), snap.Total))
	}

	if snap.CanExport {
		ui.exportBtn.Enable()
	} else {
		ui.exportBtn.Disable()
	}

	ui.resultGrid.Refresh()
}

// createTile creates a fresh grid cell widget
func (ui *RootUI) createTile() fyne.CanvasObject {
	tile := NewResultTile(ui.localization)
	tile.SetOnRemove(ui.onRemoveSlot)
	return tile
}

// updateTile rebinds one grid cell to the slot at the given position
func (ui *RootUI) updateTile(id widget.GridWrapItemID, obj fyne.CanvasObject) {
	snap := ui.currentSnapshot()
	if int(id) >= len(snap.Slots) {
		return
	}

	tile, ok := obj.(*ResultTile)
	if !ok {
		return
	}

	// Re-set the callback on every rebind so recycled cells never hold a stale one
	tile.SetOnRemove(ui.onRemoveSlot)
	tile.UpdateSlot(snap.Slots[id])
}

// onSearchClick handles the search button click
func (ui *RootUI) onSearchClick() {
	query := strings.TrimSpace(ui.queryEntry.Text)
	if query == "" {
		// Also reflect in notification panel
		ui.showNotification(ui.localization.GetText(KeyPleaseEnterQuery), false)
		widget.ShowPopUp(widget.NewLabel(ui.localization.GetText(KeyPleaseEnterQuery)), ui.window.Canvas())
		return
	}

	log.Printf("Searching for: %s", query)
	ui.controller.SetQuery(query)
}

// onRemoveSlot starts removal of a double-tapped tile
func (ui *RootUI) onRemoveSlot(slotID string) {
	if err := ui.controller.RemoveSlot(slotID); err != nil {
		log.Printf("Error removing slot %s: %v", slotID, err)
	}
}

// onExportClick packages the displayed results into a zip archive and saves
// it to the configured export directory
func (ui *RootUI) onExportClick() {
	snap := ui.currentSnapshot()
	if snap.LiveCount == 0 {
		widget.ShowPopUp(widget.NewLabel(ui.localization.GetText(KeyNothingToExport)), ui.window.Canvas())
		return
	}

	// The pipeline runs in the background; the controller flips its
	// exporting flag, which the notification panel picks up
	go func() {
		result, err := ui.controller.Export(context.Background())
		if err != nil {
			log.Printf("Export failed: %v", err)
			ui.showNotification(ui.localization.GetText(KeyExportFailed)+": "+err.Error(), false)
			return
		}

		exportDir := ui.settings.GetExportDirectory()
		path, err := platform.SaveArchive(exportDir, result.Filename, result.Data)
		if err != nil {
			log.Printf("Error saving archive %s: %v", result.Filename, err)
			ui.showNotification(ui.localization.GetText(KeyExportFailed)+": "+err.Error(), false)
			return
		}

		log.Printf("Export saved: %s (%d entries, %d skipped)", path, result.Exported, result.Skipped)
		ui.onExportFinished(path, result)
	}()
}

// onExportFinished notifies the user about a finished export
func (ui *RootUI) onExportFinished(path string, result *model.ExportResult) {
	message := result.Filename
	if result.Skipped > 0 {
		message = fmt.Sprintf("%s (%d %s)", result.Filename, result.Skipped, ui.localization.GetText(KeySkipped))
	}

	// Use Fyne's SendNotification
	fyne.CurrentApp().SendNotification(&fyne.Notification{
		Title:   ui.localization.GetText(KeyExportCompleted),
		Content: message,
	})

	// Show in-app toast notification with action buttons
	fyne.Do(func() {
		ui.showToastNotification(path, message)
	})

	// Auto-reveal if enabled
	if ui.settings.GetAutoRevealOnExport() {
		log.Printf("Auto-revealing exported archive: %s", path)
		ui.onRevealFile(path)
	}
}

// showNotification displays a message in the notification panel under the
// query input. When spinning is true, a spinner indicates background activity.
func (ui *RootUI) showNotification(message string, spinning bool) {
	if ui.notificationLabel == nil || ui.notificationContainer == nil || ui.notificationSpinner == nil {
		return
	}
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
	if ui.notificationContainer == nil || ui.notificationSpinner == nil {
		return
	}
	fyne.Do(func() {
		ui.notificationSpinner.Hide()
		ui.notificationContainer.Hide()
	})
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, func() {
		// Language may have changed in the dialog
		ui.localization.SetLanguage(ui.settings.GetLanguage())
		ui.refreshUITexts()
		ui.createMenu()
	})
}

// showToastNotification shows an in-app toast with action buttons for the archive
func (ui *RootUI) showToastNotification(path string, message string) {
	// Create notification content
	titleLabel := widget.NewLabel(ui.localization.GetText(KeyExportCompleted))
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	messageLabel := widget.NewLabel(message)
	messageLabel.Truncation = fyne.TextTruncateEllipsis

	// Create action buttons
	revealBtn := widget.NewButton(ui.localization.GetText(KeyReveal), func() {
		ui.onRevealFile(path)
	})
	revealBtn.Importance = widget.HighImportance

	openBtn := widget.NewButton(ui.localization.GetText(KeyOpen), func() {
		ui.onOpenFile(path)
	})
	openBtn.Importance = widget.MediumImportance

	// Create close button
	var toastPopup *widget.PopUp
	closeBtn := widget.NewButton(IconClose, func() {
		if toastPopup != nil {
			toastPopup.Hide()
		}
	})
	closeBtn.Importance = widget.LowImportance

	// Layout the toast content
	header := container.NewBorder(nil, nil, titleLabel, closeBtn)
	actions := container.NewHBox(revealBtn, openBtn)
	content := container.NewVBox(
		header,
		messageLabel,
		actions,
	)

	// Create and position the popup
	toastPopup = widget.NewModalPopUp(content, ui.window.Canvas())

	// Position in top-right corner
	canvasSize := ui.window.Canvas().Size()
	toastSize := fyne.NewSize(ToastWidth, ToastHeight)
	toastPos := fyne.NewPos(canvasSize.Width-toastSize.Width-ToastMargin, ToastMargin)

	toastPopup.Resize(toastSize)
	toastPopup.Move(toastPos)
	toastPopup.Show()

	// Auto-hide after configured time
	go func() {
		time.Sleep(ToastAutoHide)
		fyne.Do(func() {
			toastPopup.Hide()
		})
	}()
}

// onRevealFile shows the archive in the system file manager
func (ui *RootUI) onRevealFile(filePath string) {
	log.Printf("onRevealFile called for path: %s", filePath)

	if filePath == "" {
		ui.showError("Error: No file path provided")
		return
	}

	if err := platform.OpenFileInManager(filePath); err != nil {
		log.Printf("Error revealing file %s: %v", filePath, err)
		ui.showError(ui.localization.GetText(KeyErrorOpeningFile) + ": " + err.Error())
		return
	}

	log.Printf("File revealed successfully: %s", filePath)
}

// onOpenFile opens the archive with the default application
func (ui *RootUI) onOpenFile(filePath string) {
	log.Printf("onOpenFile called for path: %s", filePath)

	if filePath == "" {
		ui.showError("Error: No file path provided")
		return
	}

	if err := platform.OpenFileWithDefaultApp(filePath); err != nil {
		log.Printf("Error opening file %s: %v", filePath, err)
		ui.showError(ui.localization.GetText(KeyErrorOpeningFile) + ": " + err.Error())
		return
	}

	log.Printf("File opened successfully: %s", filePath)
}

// showError pops a transient error message over the window. Safe to call
// from any goroutine.
func (ui *RootUI) showError(message string) {
	fyne.Do(func() {
		widget.ShowPopUp(widget.NewLabel(message), ui.window.Canvas())
	})
}
