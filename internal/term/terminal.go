// Package term is a raw-terminal backend built on a tcell screen: cells are
// drawn with SetContent and keys arrive as tcell events.
package term

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"mdslides/internal/present"
	"mdslides/internal/theme"
)

// errClosed is returned by ReadKey once the screen is gone.
var errClosed = errors.New("screen closed")

// Terminal implements present.Backend.
type Terminal struct {
	screen tcell.Screen
	theme  theme.Theme

	keys      chan present.Key
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ present.Backend = (*Terminal)(nil)

// New returns a terminal on the process's controlling tty.
func New() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	return newTerminal(screen), nil
}

func newTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{
		screen: screen,
		theme:  theme.Default().At(0),
		keys:   make(chan present.Key, 64),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Init takes over the terminal and starts reading events.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	t.screen.HideCursor()
	t.Clear()
	go t.pollEvents()
	return nil
}

func (t *Terminal) pollEvents() {
	defer close(t.done)
	for {
		ev := t.screen.PollEvent()
		var k present.Key
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventKey:
			k = toKey(ev)
		case *tcell.EventResize:
			// the loop recenters on its next paint
			t.screen.Sync()
			continue
		default:
			continue
		}
		select {
		case t.keys <- k:
		case <-t.stop:
			return
		}
	}
}

// Close restores the terminal. It may be called more than once and from
// another goroutine; a ReadKey blocked at the time fails with errClosed.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		close(t.stop)
		t.screen.Fini()
		select {
		case <-t.done:
		case <-time.After(100 * time.Millisecond):
		}
	})
	return nil
}

// Size returns the screen size, 80x24 when it cannot be read.
func (t *Terminal) Size() (int, int) {
	w, h := t.screen.Size()
	if w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// Clear paints the whole screen with the theme background.
func (t *Terminal) Clear() {
	t.screen.SetStyle(t.style(present.Style{Role: theme.Background}))
	t.screen.Clear()
}

// ClearLine paints one row with the theme background.
func (t *Terminal) ClearLine(row int) {
	w, h := t.Size()
	if row < 0 || row >= h {
		return
	}
	st := t.style(present.Style{Role: theme.Background})
	for x := 0; x < w; x++ {
		t.screen.SetContent(x, row, ' ', nil, st)
	}
}

// DrawText writes text at row and col, clipped to the screen.
func (t *Terminal) DrawText(row, col int, text string, st present.Style) {
	w, h := t.Size()
	if row < 0 || row >= h || col >= w || text == "" {
		return
	}
	if col < 0 {
		text = ansi.Cut(text, -col, ansi.StringWidth(text))
		col = 0
	}
	text = ansi.Truncate(text, w-col, "")
	style := t.style(st)
	x := col
	for _, r := range text {
		t.screen.SetContent(x, row, r, nil, style)
		x += max(runewidth.RuneWidth(r), 1)
	}
}

func (t *Terminal) style(st present.Style) tcell.Style {
	s := tcell.StyleDefault.Background(color(t.theme.Colors.Background))
	if st.Role != theme.Background {
		s = s.Foreground(color(string(t.theme.Color(st.Role))))
	}
	return s.Bold(st.Bold).Dim(st.Dim).Reverse(st.Reverse)
}

// color converts a palette entry: an ANSI or 256-color index, or anything
// tcell.GetColor names.
func color(c string) tcell.Color {
	if c == "" {
		return tcell.ColorDefault
	}
	if n, err := strconv.Atoi(c); err == nil && n >= 0 && n < 256 {
		return tcell.PaletteColor(n)
	}
	return tcell.GetColor(c)
}

// ReadKey blocks for the next key.
func (t *Terminal) ReadKey() (present.Key, error) {
	select {
	case k := <-t.keys:
		return k, nil
	case <-t.stop:
		return present.Key{}, errClosed
	}
}

// KeyPending reports whether a key is waiting.
func (t *Terminal) KeyPending() bool { return len(t.keys) > 0 }

// ApplyTheme sets the colors used by later draws.
func (t *Terminal) ApplyTheme(th theme.Theme) { t.theme = th }

// Sleep pauses between animation frames.
func (t *Terminal) Sleep(d time.Duration) { time.Sleep(d) }

// Flush shows what has been drawn.
func (t *Terminal) Flush() error {
	t.screen.Show()
	return nil
}
