package panels

import (
	"fmt"
	"log"

	"defect-review/internal/app"
	"defect-review/internal/region"
	"defect-review/internal/session"
	"defect-review/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// defaultClass is used for new regions when no class is chosen yet.
const defaultClass = "defect"

// RegionsPanel lists the current photo's regions and carries the class
// and decision controls. Edits flow through the canvas controller so the
// panel and the canvas share one mutation path.
type RegionsPanel struct {
	state     *app.State
	canvas    *canvas.AnnotationCanvas
	container fyne.CanvasObject

	list    *widget.List
	regions []region.Region

	classSelect   *widget.Select
	classEntry    *widget.Entry
	decisionLabel *widget.Label

	// syncing suppresses control callbacks while the panel mirrors
	// state changes into its widgets.
	syncing bool
}

// NewRegionsPanel creates the regions panel.
func NewRegionsPanel(state *app.State, cvs *canvas.AnnotationCanvas) *RegionsPanel {
	rp := &RegionsPanel{
		state:  state,
		canvas: cvs,
	}

	rp.list = widget.NewList(
		func() int { return len(rp.regions) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i < len(rp.regions) {
				o.(*widget.Label).SetText(regionRow(rp.regions[i]))
			}
		},
	)
	rp.list.OnSelected = func(i widget.ListItemID) {
		if rp.syncing || i < 0 || i >= len(rp.regions) {
			return
		}
		state.SelectRegion(rp.regions[i].ID)
	}
	rp.list.OnUnselected = func(widget.ListItemID) {
		if rp.syncing {
			return
		}
		state.SelectRegion("")
	}

	rp.classSelect = widget.NewSelect(nil, func(cls string) {
		if rp.syncing || cls == "" {
			return
		}
		rp.applyClass(cls)
	})
	rp.classSelect.PlaceHolder = "Class"

	rp.classEntry = widget.NewEntry()
	rp.classEntry.SetPlaceHolder("New class name")
	addClassButton := widget.NewButton("Add Class", func() {
		cls := state.AddClass(rp.classEntry.Text)
		if cls == "" {
			return
		}
		rp.classEntry.SetText("")
		rp.classSelect.SetSelected(cls)
	})

	addButton := widget.NewButton("Add", func() { cvs.AddRegion(rp.currentClass()) })
	dupButton := widget.NewButton("Duplicate", cvs.DuplicateSelected)
	delButton := widget.NewButton("Delete", cvs.DeleteSelected)

	rp.decisionLabel = widget.NewLabel("Decision: -")
	okButton := widget.NewButton("OK", func() { rp.applyDecision(session.DecisionOK) })
	defectButton := widget.NewButton("Defect", func() { rp.applyDecision(session.DecisionDefect) })
	clearButton := widget.NewButton("Clear", func() { rp.applyDecision(session.DecisionNone) })

	top := container.NewVBox(
		container.NewGridWithColumns(3, addButton, dupButton, delButton),
		rp.classSelect,
		container.NewBorder(nil, nil, nil, addClassButton, rp.classEntry),
		widget.NewSeparator(),
	)
	bottom := container.NewVBox(
		widget.NewSeparator(),
		rp.decisionLabel,
		container.NewGridWithColumns(3, okButton, defectButton, clearButton),
	)
	rp.container = container.NewBorder(top, bottom, nil, nil, rp.list)

	state.On(app.EventPhotoChanged, func(interface{}) { rp.reload() })
	state.On(app.EventRegionsChanged, func(interface{}) { rp.reload() })
	state.On(app.EventSessionChanged, func(interface{}) {
		rp.reload()
		rp.syncClasses()
	})
	state.On(app.EventClassesChanged, func(interface{}) { rp.syncClasses() })
	state.On(app.EventDecisionChanged, func(interface{}) { rp.syncDecision() })
	state.On(app.EventSelectionChanged, func(data interface{}) {
		id, _ := data.(string)
		rp.syncSelection(id)
	})
	state.On(app.EventRegionReveal, func(data interface{}) {
		id, _ := data.(string)
		for i, r := range rp.regions {
			if r.ID == id {
				rp.list.ScrollTo(i)
				return
			}
		}
	})

	return rp
}

// Container returns the panel container.
func (rp *RegionsPanel) Container() fyne.CanvasObject {
	return rp.container
}

func regionRow(r region.Region) string {
	row := r.Cls
	if row == "" {
		row = "region"
	}
	if r.Confidence > 0 {
		row += fmt.Sprintf("  %.2f", r.Confidence)
	}
	if r.Origin == region.OriginExternal {
		row += "  [auto]"
	}
	return row
}

func (rp *RegionsPanel) currentClass() string {
	if rp.classSelect.Selected != "" {
		return rp.classSelect.Selected
	}
	return defaultClass
}

// applyClass reassigns the selected region's class through the canonical
// commit path.
func (rp *RegionsPanel) applyClass(cls string) {
	selected := rp.state.SelectedRegionID()
	if selected == "" {
		return
	}
	regions := rp.canvas.Regions()
	i := region.Find(regions, selected)
	if i < 0 || regions[i].Cls == cls {
		return
	}
	out := make([]region.Region, len(regions))
	copy(out, regions)
	out[i].Cls = cls
	rp.canvas.SetRegions(out)
	if err := rp.state.CommitRegions(out); err != nil {
		log.Printf("Failed to set class: %v", err)
	}
}

func (rp *RegionsPanel) applyDecision(d session.Decision) {
	if err := rp.state.SetDecision(d); err != nil {
		log.Printf("Failed to set decision: %v", err)
	}
}

// reload mirrors the canonical region list into the list widget.
func (rp *RegionsPanel) reload() {
	rp.regions = rp.state.CurrentRegions()
	rp.list.Refresh()
	rp.syncSelection(rp.state.SelectedRegionID())
	rp.syncDecision()
}

func (rp *RegionsPanel) syncSelection(id string) {
	rp.syncing = true
	defer func() { rp.syncing = false }()

	i := region.Find(rp.regions, id)
	if i < 0 {
		rp.list.UnselectAll()
		return
	}
	rp.list.Select(i)

	rp.classSelect.SetSelected(rp.regions[i].Cls)
}

func (rp *RegionsPanel) syncClasses() {
	rp.syncing = true
	defer func() { rp.syncing = false }()

	var classes []string
	if sess := rp.state.Session(); sess != nil {
		classes = append(classes, sess.Classes...)
	}
	selected := rp.classSelect.Selected
	rp.classSelect.Options = classes
	rp.classSelect.Selected = ""
	for _, c := range classes {
		if c == selected {
			rp.classSelect.Selected = selected
			break
		}
	}
	rp.classSelect.Refresh()
}

func (rp *RegionsPanel) syncDecision() {
	text := "Decision: -"
	if sess := rp.state.Session(); sess != nil {
		if p := sess.Photo(rp.state.CurrentPhotoID()); p != nil {
			switch p.Decision {
			case session.DecisionOK:
				text = "Decision: OK"
			case session.DecisionDefect:
				text = "Decision: DEFECT"
			}
		}
	}
	rp.decisionLabel.SetText(text)
}
