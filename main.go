package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"

	"github.com/pixgrid/pix-grabber/internal/grid"
	"github.com/pixgrid/pix-grabber/internal/search"
	"github.com/pixgrid/pix-grabber/internal/transcode"
	"github.com/pixgrid/pix-grabber/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.pixgrid.pix-grabber"
	AppName = "Pix Grabber"

	WindowWidth  = 980
	WindowHeight = 720
)

func main() {
	// Log version information
	fmt.Printf("Pix Grabber v%s starting...\n", version)

	// Pick up SEARCH_API_URL and friends from a local .env if present
	_ = godotenv.Load()

	// Create new Fyne app
	myApp := app.NewWithID(AppID)

	// Apply compact theme
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	windowTitle := fmt.Sprintf("%s v%s", AppName, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	// Initialize services
	searchClient := search.NewClient("")
	controller := grid.NewController(searchClient, transcode.NewService())

	// Create and setup UI
	ui.NewRootUI(myWindow, myApp, controller)

	// Show and run
	myWindow.ShowAndRun()
}
