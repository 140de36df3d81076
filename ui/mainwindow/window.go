// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"

	"defect-review/internal/app"
	"defect-review/internal/detect"
	"defect-review/internal/region"
	"defect-review/internal/version"
	"defect-review/ui/canvas"
	"defect-review/ui/panels"
	"defect-review/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

const appTitle = "Defect Review"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.AnnotationCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	detector *detect.Detector

	// committing suppresses the region-change echo while the canvas's
	// own commit is being applied to state, so an in-progress drag is
	// not abandoned by its own update.
	committing bool
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window:   win,
		app:      fyneApp,
		state:    state,
		prefs:    p,
		detector: detect.NewDetector(),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewAnnotationCanvas()

	mw.canvas.OnCommit(func(regions []region.Region) {
		mw.committing = true
		err := mw.state.CommitRegions(regions)
		mw.committing = false
		if err != nil {
			log.Printf("Failed to commit regions: %v", err)
		}
	})
	mw.canvas.OnSelect(func(id string) {
		mw.state.SelectRegion(id)
	})
	mw.canvas.OnReveal(func(id string) {
		mw.sidePanel.ShowRegions()
		mw.state.RevealRegion(id)
	})
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.updateStatus(fmt.Sprintf("Zoom: %.0f%%", zoom*100))
	})

	mw.sidePanel = panels.NewSidePanel(mw.state, mw.canvas)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar, // top
		nil,     // bottom
		nil,     // left
		nil,     // right
		mw.canvas,
	)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", mw.canvas.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.canvas.ZoomIn)
	fitBtn := widget.NewButton("Fit", mw.canvas.FitToView)
	actualBtn := widget.NewButton("1:1", mw.canvas.ActualSize)

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		actualBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Session", mw.onNewSession),
		fyne.NewMenuItem("Open Session...", mw.onOpenSession),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Session", mw.onSaveSession),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Add Region", func() { mw.canvas.AddRegion("") }),
		fyne.NewMenuItem("Duplicate Region", mw.canvas.DuplicateSelected),
		fyne.NewMenuItem("Delete Region", mw.canvas.DeleteSelected),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Fit to View", mw.canvas.FitToView),
		fyne.NewMenuItem("Actual Size", mw.canvas.ActualSize),
	)

	proposeItem := fyne.NewMenuItem("Propose Regions", mw.onProposeRegions)
	proposeItem.Disabled = !detect.Available()
	toolsMenu := fyne.NewMenu("Tools", proposeItem)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, toolsMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventSessionChanged, func(data interface{}) {
		if id, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + shortID(id))
			mw.prefs.SetString(prefs.KeyLastSession, id)
		}
		if mw.state.CurrentPhotoID() == "" {
			mw.canvas.SetPhoto(nil, nil)
		}
		mw.updateStatus("Session ready")
	})

	mw.state.On(app.EventPhotoChanged, func(interface{}) {
		p := mw.state.CurrentPhoto()
		if p == nil {
			mw.canvas.SetPhoto(nil, nil)
			return
		}
		mw.canvas.SetPhoto(p.Image, mw.state.CurrentRegions())
		mw.updateStatus(fmt.Sprintf("%s (%dx%d)", p.Filename, p.Width(), p.Height()))
	})

	mw.state.On(app.EventRegionsChanged, func(interface{}) {
		if mw.committing {
			return
		}
		mw.canvas.SetRegions(mw.state.CurrentRegions())
	})

	mw.state.On(app.EventSelectionChanged, func(data interface{}) {
		id, _ := data.(string)
		mw.canvas.Select(id)
	})

	mw.state.On(app.EventSessionSaved, func(interface{}) {
		mw.updateStatus("Session saved")
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		modified, _ := data.(bool)
		title := mw.Title()
		if modified {
			if len(title) == 0 || title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		} else if len(title) > 2 && title[len(title)-1] == '*' {
			mw.SetTitle(title[:len(title)-2])
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Menu action handlers

func (mw *MainWindow) onNewSession() {
	if err := mw.state.NewSession(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onOpenSession() {
	ids, err := mw.state.SessionIDs()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	if len(ids) == 0 {
		dialog.ShowInformation("Open Session", "No stored sessions.", mw.Window)
		return
	}

	sel := widget.NewSelect(ids, nil)
	sel.SetSelectedIndex(len(ids) - 1)
	dialog.ShowCustomConfirm("Open Session", "Open", "Cancel", sel, func(ok bool) {
		if !ok || sel.Selected == "" {
			return
		}
		if err := mw.state.LoadSession(sel.Selected); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
}

func (mw *MainWindow) onSaveSession() {
	if err := mw.state.SaveSession(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

// onProposeRegions runs the contour detector on the current photo and
// merges the proposals into its region list.
func (mw *MainWindow) onProposeRegions() {
	p := mw.state.CurrentPhoto()
	if p == nil {
		mw.updateStatus("No photo to analyze")
		return
	}

	proposals, err := mw.detector.Propose(p.Image)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	if len(proposals) == 0 {
		mw.updateStatus("No candidate regions found")
		return
	}

	merged := append(mw.state.CurrentRegions(), proposals...)
	mw.canvas.SetRegions(merged)
	if err := mw.state.CommitRegions(merged); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus(fmt.Sprintf("Added %d proposed regions", len(proposals)))
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"An operator tool for reviewing photos of structural defects.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
