package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mdslides/internal/anim"
	"mdslides/internal/slide"
)

// reveal tracks an in-progress slide animation. Elements in order before
// cur are fully drawn, cur shows frames[frame] once frame >= 0, and later
// elements are not drawn yet.
type reveal struct {
	active  bool
	gen     int
	slide   int
	cur     int
	frames  []anim.Frame
	frame   int
	started time.Time
}

// revealOrder lists the elements that animate, in render order. Shell
// output regions and rows below the slide area are left out.
func (m Model) revealOrder() []int {
	s := m.p.Slide()
	var order []int
	for i := range s.Elements {
		e := &s.Elements[i]
		if e.Type == slide.ShellOutput || e.Row >= m.contentBottom() {
			continue
		}
		order = append(order, i)
	}
	return order
}

// frameFor returns the frame to draw for the element at position pos of
// the reveal order.
func (m Model) frameFor(pos int, e *slide.Element) (anim.Frame, bool) {
	r := m.reveal
	if !r.active || r.slide != m.p.Index() || pos < r.cur {
		return anim.Final(e), true
	}
	if pos == r.cur && r.frame >= 0 && r.frame < len(r.frames) {
		return r.frames[r.frame], true
	}
	return anim.Frame{}, false
}

func (m Model) tick(d time.Duration) tea.Cmd {
	gen := m.reveal.gen
	return tea.Tick(d, func(time.Time) tea.Msg { return revealMsg{gen: gen} })
}

func (m Model) startReveal() (Model, tea.Cmd) {
	m.reveal = reveal{
		active:  true,
		gen:     m.reveal.gen + 1,
		slide:   m.p.Index(),
		cur:     -1,
		started: m.now(),
	}
	return m.nextElement()
}

// nextElement moves the reveal to the next element, waiting until its
// stagger delay has passed since the slide started.
func (m Model) nextElement() (Model, tea.Cmd) {
	r := &m.reveal
	order := m.revealOrder()
	r.cur++
	if r.cur >= len(order) {
		r.active = false
		return m, nil
	}
	e := &m.p.Slide().Elements[order[r.cur]]
	r.frames = anim.Frames(e, m.timing)
	r.frame = -1
	if wait := e.Delay - m.now().Sub(r.started); wait > 0 {
		return m, m.tick(wait)
	}
	return m.nextFrame()
}

func (m Model) nextFrame() (Model, tea.Cmd) {
	r := &m.reveal
	r.frame++
	if r.frame >= len(r.frames) {
		return m.nextElement()
	}
	if d := r.frames[r.frame].Delay; d > 0 {
		return m, m.tick(d)
	}
	return m.nextFrame()
}
