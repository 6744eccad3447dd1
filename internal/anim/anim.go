// Package anim computes the frames that reveal a slide element and plays
// them on a canvas, stopping early when a key is pressed.
package anim

import (
	"time"

	"github.com/mattn/go-runewidth"

	"mdslides/internal/slide"
)

// Timing holds animation speeds.
type Timing struct {
	Typewriter time.Duration // per character
	FadeStep   time.Duration // per fade step
	SlideStep  time.Duration // per slide-in step
	SlideCols  int           // columns moved per slide-in step
	SlideLead  int           // extra columns a slide-in starts to the right
	PerRow     time.Duration // reveal stagger between rows
}

// DefaultTiming returns the stock animation speeds.
func DefaultTiming() Timing {
	return Timing{
		Typewriter: 30 * time.Millisecond,
		FadeStep:   80 * time.Millisecond,
		SlideStep:  30 * time.Millisecond,
		SlideCols:  3,
		SlideLead:  10,
		PerRow:     50 * time.Millisecond,
	}
}

// Frame is one drawing step. Delay is the pause after it is drawn.
type Frame struct {
	Col       int
	Text      string
	Dim       bool
	ClearLine bool
	Delay     time.Duration
}

// Final is the element fully drawn at its resting place.
func Final(e *slide.Element) Frame {
	return Frame{Col: e.Col, Text: e.Content}
}

// Frames returns the sequence revealing e. The last frame always equals
// Final(e) apart from ClearLine and carries no delay.
func Frames(e *slide.Element, t Timing) []Frame {
	var frames []Frame
	switch e.Animation {
	case slide.FadeIn:
		for i := range 4 {
			frames = append(frames, Frame{Col: e.Col, Text: e.Content, Dim: i < 2, Delay: t.FadeStep})
		}
	case slide.SlideIn:
		step := max(t.SlideCols, 1)
		for c := e.Col + runewidth.StringWidth(e.Content) + t.SlideLead; c > e.Col; c -= step {
			frames = append(frames, Frame{Col: c, Text: e.Content, ClearLine: true, Delay: t.SlideStep})
		}
		frames = append(frames, Frame{Col: e.Col, Text: e.Content, ClearLine: true})
	case slide.Typewriter:
		runes := []rune(e.Content)
		for i := 0; i <= len(runes); i++ {
			frames = append(frames, Frame{Col: e.Col, Text: string(runes[:i]), Delay: t.Typewriter})
		}
	default:
		frames = append(frames, Final(e))
	}
	frames[len(frames)-1].Delay = 0
	return frames
}

// Canvas is where frames are drawn.
type Canvas interface {
	DrawFrame(e *slide.Element, f Frame)
	Sleep(d time.Duration)
	KeyPending() bool
}

// pollInterval bounds how long a key press can go unnoticed during a pause.
const pollInterval = 20 * time.Millisecond

// pause sleeps for d in short slices and reports whether a key arrived.
func pause(c Canvas, d time.Duration) bool {
	for d > 0 {
		if c.KeyPending() {
			return true
		}
		step := min(d, pollInterval)
		c.Sleep(step)
		d -= step
	}
	return c.KeyPending()
}

// Play draws frames for e. When a key is pending it draws the final frame
// and returns true without consuming the key.
func Play(c Canvas, e *slide.Element, frames []Frame) bool {
	for _, f := range frames {
		if c.KeyPending() {
			c.DrawFrame(e, finish(e))
			return true
		}
		c.DrawFrame(e, f)
		if f.Delay > 0 && pause(c, f.Delay) {
			c.DrawFrame(e, finish(e))
			return true
		}
	}
	return false
}

// finish is the final frame, clearing the row when earlier frames may have
// left text elsewhere on it.
func finish(e *slide.Element) Frame {
	f := Final(e)
	f.ClearLine = e.Animation == slide.SlideIn
	return f
}

// PlaySlide reveals els in order. Element i starts no earlier than its
// Delay after the slide started, measured with now. Once a key interrupts,
// the remaining elements are drawn in their final state at once.
func PlaySlide(c Canvas, els []*slide.Element, t Timing, now func() time.Time) (interrupted bool) {
	start := now()
	for _, e := range els {
		if interrupted {
			c.DrawFrame(e, finish(e))
			continue
		}
		if wait := e.Delay - now().Sub(start); wait > 0 && pause(c, wait) {
			interrupted = true
			c.DrawFrame(e, finish(e))
			continue
		}
		interrupted = Play(c, e, Frames(e, t))
	}
	return interrupted
}
