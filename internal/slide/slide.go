// Package slide holds the parsed presentation: decks, slides and the
// positioned elements drawn on them.
package slide

import (
	"time"

	"github.com/mattn/go-runewidth"
)

// Type classifies an element.
type Type int

const (
	Text Type = iota
	Header1
	Header2
	Header3
	Bullet
	Numbered
	CodeBlock
	ShellCommand
	ShellOutput
)

var typeNames = [...]string{"text", "h1", "h2", "h3", "bullet", "numbered", "code", "shell", "output"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Animation selects how an element is revealed.
type Animation int

const (
	None Animation = iota
	FadeIn
	SlideIn
	Typewriter
)

var animationNames = [...]string{"none", "fade", "slide", "typewriter"}

func (a Animation) String() string {
	if int(a) < len(animationNames) {
		return animationNames[a]
	}
	return "unknown"
}

// DefaultMaxVisible is the output window height of a shell command.
const DefaultMaxVisible = 5

// Element is one positioned unit of slide content.
type Element struct {
	Content   string
	Type      Type
	Row       int
	Col       int
	Bold      bool
	Emphasis  bool // inline **bold** text, drawn in the accent color
	Animation Animation
	Delay     time.Duration
	Lang      string // fence language of a code block, may be empty

	// Shell command state, only used when Type == ShellCommand.
	Command    string
	Executed   bool
	Output     []string
	Offset     int
	MaxVisible int
}

// Slide is an ordered list of elements. Order is render order.
type Slide struct {
	Elements []Element
}

// ShellCommands returns the indices of the slide's shell command elements.
func (s *Slide) ShellCommands() []int {
	var idx []int
	for i := range s.Elements {
		if s.Elements[i].Type == ShellCommand {
			idx = append(idx, i)
		}
	}
	return idx
}

// HasUnexecuted reports whether a shell command on the slide has not run yet.
func (s *Slide) HasUnexecuted() bool {
	for i := range s.Elements {
		if e := &s.Elements[i]; e.Type == ShellCommand && !e.Executed {
			return true
		}
	}
	return false
}

// Deck is a parsed presentation.
type Deck struct {
	Title  string
	Slides []Slide
}

// Len returns the number of slides.
func (d *Deck) Len() int { return len(d.Slides) }

// Recenter recomputes the column of every Header1 for a new screen width.
// Execution state is left alone.
func (d *Deck) Recenter(width int) {
	for i := range d.Slides {
		for j := range d.Slides[i].Elements {
			e := &d.Slides[i].Elements[j]
			if e.Type == Header1 {
				e.Col = CenterCol(e.Content, width)
			}
		}
	}
}

// MinCol is the left margin used by unindented elements.
const MinCol = 2

// CenterCol returns the column that centers s on a screen of the given width,
// never less than MinCol.
func CenterCol(s string, width int) int {
	col := (width - runewidth.StringWidth(s)) / 2
	if col < MinCol {
		return MinCol
	}
	return col
}
