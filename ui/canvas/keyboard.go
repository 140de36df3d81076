package canvas

import (
	"fyne.io/fyne/v2"
)

const (
	nudgeStep     = 0.005
	nudgeStepFast = 0.02
)

// Keyboard translates key events into region actions. It is inactive
// while a drag gesture is in progress; Fyne's focus handling keeps key
// events away from the canvas while a text entry is focused.
type Keyboard struct {
	ctrl *Controller
}

// NewKeyboard creates a keyboard controller bound to ctrl.
func NewKeyboard(ctrl *Controller) *Keyboard {
	return &Keyboard{ctrl: ctrl}
}

// HandleKey processes one key event and reports whether it was consumed.
func (k *Keyboard) HandleKey(key fyne.KeyName, mods Modifiers) bool {
	if k.ctrl.Dragging() {
		return false
	}

	step := nudgeStep
	if mods.Fast {
		step = nudgeStepFast
	}

	switch key {
	case fyne.KeyEscape:
		k.ctrl.Deselect()
	case fyne.KeyD:
		k.ctrl.DuplicateSelected()
	case fyne.KeyDelete, fyne.KeyBackspace:
		k.ctrl.DeleteSelected()
	case fyne.KeyLeft:
		k.ctrl.NudgeSelected(-step, 0)
	case fyne.KeyRight:
		k.ctrl.NudgeSelected(step, 0)
	case fyne.KeyUp:
		k.ctrl.NudgeSelected(0, -step)
	case fyne.KeyDown:
		k.ctrl.NudgeSelected(0, step)
	default:
		return false
	}
	return true
}
