package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"mdslides/internal/present"
)

// keyMap describes the bindings shown in the footer. Keys themselves are
// interpreted by the presenter.
type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Goto   key.Binding
	Run    key.Binding
	Scroll key.Binding
	Theme  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Run, k.Scroll, k.Goto, k.Theme, k.Help, k.Quit}
}

// FullHelp returns bindings grouped by purpose.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Goto},
		{k.Run, k.Scroll},
		{k.Theme, k.Help, k.Quit},
	}
}

func newKeyMap(utf8 bool) keyMap {
	right, left := "→", "←"
	if !utf8 {
		right, left = "->", "<-"
	}
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("right", " ", "l"),
			key.WithHelp(right+"/space", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "backspace"),
			key.WithHelp(left, "previous"),
		),
		Goto: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "goto"),
		),
		Run: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		Scroll: key.NewBinding(
			key.WithKeys("u", "d"),
			key.WithHelp("u/d", "scroll"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// toKey converts a bubbletea key message to a presenter key.
func toKey(msg tea.KeyMsg) present.Key {
	switch msg.Type {
	case tea.KeyEnter:
		return present.Code(present.KeyEnter)
	case tea.KeyEsc:
		return present.Code(present.KeyEscape)
	case tea.KeyBackspace:
		return present.Code(present.KeyBackspace)
	case tea.KeyUp:
		return present.Code(present.KeyUp)
	case tea.KeyDown:
		return present.Code(present.KeyDown)
	case tea.KeyLeft:
		return present.Code(present.KeyLeft)
	case tea.KeyRight:
		return present.Code(present.KeyRight)
	case tea.KeyHome:
		return present.Code(present.KeyHome)
	case tea.KeyEnd:
		return present.Code(present.KeyEnd)
	case tea.KeyCtrlC:
		return present.Code(present.KeyCtrlC)
	case tea.KeySpace:
		return present.Rune(' ')
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && !msg.Alt {
			return present.Rune(msg.Runes[0])
		}
	}
	return present.Code(present.KeyUnknown)
}
