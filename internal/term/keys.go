package term

import (
	"github.com/gdamore/tcell/v2"

	"mdslides/internal/present"
)

var keyCodes = map[tcell.Key]present.KeyCode{
	tcell.KeyEnter:      present.KeyEnter,
	tcell.KeyLF:         present.KeyEnter,
	tcell.KeyEscape:     present.KeyEscape,
	tcell.KeyBackspace:  present.KeyBackspace,
	tcell.KeyBackspace2: present.KeyBackspace,
	tcell.KeyUp:         present.KeyUp,
	tcell.KeyDown:       present.KeyDown,
	tcell.KeyLeft:       present.KeyLeft,
	tcell.KeyRight:      present.KeyRight,
	tcell.KeyHome:       present.KeyHome,
	tcell.KeyEnd:        present.KeyEnd,
	tcell.KeyCtrlC:      present.KeyCtrlC,
}

// toKey converts a tcell key event. Modifiers on special keys are ignored,
// so Ctrl-Right still moves to the next slide.
func toKey(ev *tcell.EventKey) present.Key {
	if ev.Key() == tcell.KeyRune {
		if ev.Modifiers()&tcell.ModAlt != 0 {
			return present.Code(present.KeyUnknown)
		}
		return present.Rune(ev.Rune())
	}
	if code, ok := keyCodes[ev.Key()]; ok {
		return present.Code(code)
	}
	return present.Code(present.KeyUnknown)
}
