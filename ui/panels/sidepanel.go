// Package panels provides UI panels for the application.
package panels

import (
	"defect-review/internal/app"
	"defect-review/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// SidePanel provides the side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	photosPanel  *PhotosPanel
	regionsPanel *RegionsPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State, cvs *canvas.AnnotationCanvas) *SidePanel {
	sp := &SidePanel{state: state}

	sp.photosPanel = NewPhotosPanel(state)
	sp.regionsPanel = NewRegionsPanel(state, cvs)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Photos", sp.photosPanel.Container()),
		container.NewTabItem("Regions", sp.regionsPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.photosPanel.SetWindow(w)
}

// ShowRegions switches the side panel to the regions tab.
func (sp *SidePanel) ShowRegions() {
	sp.container.SelectIndex(1)
}
