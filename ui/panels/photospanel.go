package panels

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"defect-review/internal/app"
	"defect-review/internal/photo"
	"defect-review/internal/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// PhotosPanel lists the session's photos and shows session totals.
type PhotosPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	list     *widget.List
	photoIDs []string
	rows     []string

	summaryLabel *widget.Label
}

// NewPhotosPanel creates the photos panel.
func NewPhotosPanel(state *app.State) *PhotosPanel {
	pp := &PhotosPanel{state: state}

	pp.summaryLabel = widget.NewLabel("No session")
	pp.summaryLabel.Wrapping = fyne.TextWrapWord

	pp.list = widget.NewList(
		func() int { return len(pp.rows) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i < len(pp.rows) {
				o.(*widget.Label).SetText(pp.rows[i])
			}
		},
	)
	pp.list.OnSelected = func(i widget.ListItemID) {
		if i < 0 || i >= len(pp.photoIDs) {
			return
		}
		if pp.photoIDs[i] == state.CurrentPhotoID() {
			return
		}
		if err := state.SelectPhoto(pp.photoIDs[i]); err != nil {
			log.Printf("Failed to open photo: %v", err)
			if pp.window != nil {
				dialog.ShowError(err, pp.window)
			}
		}
	}

	importFileButton := widget.NewButton("Import Photo...", pp.importFile)
	importDirButton := widget.NewButton("Import Folder...", pp.importFolder)

	pp.container = container.NewBorder(
		container.NewVBox(importFileButton, importDirButton),
		container.NewVBox(widget.NewSeparator(), pp.summaryLabel),
		nil, nil,
		pp.list,
	)

	state.On(app.EventSessionChanged, func(interface{}) { pp.reload() })
	state.On(app.EventPhotosChanged, func(interface{}) { pp.reload() })
	state.On(app.EventDecisionChanged, func(interface{}) { pp.reload() })
	state.On(app.EventRegionsChanged, func(interface{}) { pp.updateSummary() })
	state.On(app.EventPhotoChanged, func(data interface{}) {
		id, _ := data.(string)
		for i, pid := range pp.photoIDs {
			if pid == id {
				pp.list.Select(i)
				pp.list.ScrollTo(i)
				return
			}
		}
	})

	return pp
}

// Container returns the panel container.
func (pp *PhotosPanel) Container() fyne.CanvasObject {
	return pp.container
}

// SetWindow sets the parent window for dialogs.
func (pp *PhotosPanel) SetWindow(w fyne.Window) {
	pp.window = w
}

// importFile imports a single photo via the file open dialog.
func (pp *PhotosPanel) importFile() {
	if pp.window == nil {
		return
	}
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, pp.window)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		pp.importPaths([]string{path})
	}, pp.window)
	fd.SetFilter(storage.NewExtensionFileFilter(photo.SupportedFormats()))
	fd.Show()
}

// importFolder imports every supported photo in a chosen directory.
func (pp *PhotosPanel) importFolder() {
	if pp.window == nil {
		return
	}
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, pp.window)
			return
		}
		if dir == nil {
			return
		}
		entries, err := dir.List()
		if err != nil {
			dialog.ShowError(err, pp.window)
			return
		}
		var paths []string
		for _, u := range entries {
			if photo.IsSupportedFormat(u.Path()) {
				paths = append(paths, u.Path())
			}
		}
		pp.importPaths(paths)
	}, pp.window)
}

func (pp *PhotosPanel) importPaths(paths []string) {
	n, err := pp.state.ImportPhotos(paths)
	if err != nil {
		log.Printf("Import failed: %v", err)
		if pp.window != nil {
			dialog.ShowError(err, pp.window)
		}
		return
	}
	if n == 0 && pp.window != nil {
		dialog.ShowInformation("Import", "No supported photos found.\n"+photo.FileFilter(), pp.window)
	}
}

// reload rebuilds the photo rows from the session.
func (pp *PhotosPanel) reload() {
	sess := pp.state.Session()
	pp.photoIDs = pp.photoIDs[:0]
	pp.rows = pp.rows[:0]
	if sess != nil {
		for _, p := range sess.Photos {
			marker := ""
			switch p.Decision {
			case session.DecisionOK:
				marker = "  [OK]"
			case session.DecisionDefect:
				marker = "  [DEFECT]"
			}
			pp.photoIDs = append(pp.photoIDs, p.ID)
			pp.rows = append(pp.rows, filepath.Base(p.Filename)+marker)
		}
	}
	pp.list.Refresh()
	pp.updateSummary()
}

// updateSummary recomputes the session totals shown under the list.
func (pp *PhotosPanel) updateSummary() {
	sess := pp.state.Session()
	if sess == nil {
		pp.summaryLabel.SetText("No session")
		return
	}

	sum := session.Summarize(sess)
	var b strings.Builder
	fmt.Fprintf(&b, "%d photos, %d decided, %d defective\n%d regions",
		sum.Photos, sum.Decided, sum.Defective, sum.Regions)
	for _, cs := range sum.Classes {
		fmt.Fprintf(&b, "\n%s: %d", cs.Cls, cs.Count)
		if cs.MeanConf > 0 {
			fmt.Fprintf(&b, " (conf %.2f±%.2f)", cs.MeanConf, cs.StdDevConf)
		}
	}
	pp.summaryLabel.SetText(b.String())
}
