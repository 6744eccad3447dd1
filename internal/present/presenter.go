// Package present holds the presentation state machine and the synchronous
// loop that drives it over a terminal backend.
//
// A Presenter is owned by a single goroutine. Backends feed it keys and
// paint whatever it reports; they never change its state directly.
package present

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"mdslides/internal/shell"
	"mdslides/internal/slide"
	"mdslides/internal/theme"
)

// Mode is the active interaction state. Exactly one is active.
type Mode int

const (
	Normal Mode = iota
	Help
	Goto
	ShellSelecting
)

var modeNames = [...]string{"normal", "help", "goto", "select"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Redraw tells a backend how much of the screen changed.
type Redraw int

const (
	RedrawNone     Redraw = iota
	RedrawOutput          // shell output regions of the current slide only
	RedrawFull            // whole screen, elements in their final state
	RedrawAnimated        // whole screen, revealing the slide with animations
)

// ExecRequest names the shell command element to run.
type ExecRequest struct {
	Slide   int
	Element int
	Command string
}

// Outcome is the effect of a key press.
type Outcome struct {
	Redraw       Redraw
	Quit         bool
	ThemeChanged bool
	Exec         *ExecRequest
}

// Messages shown on the status row.
const (
	MsgShellHint      = "Shell commands on this slide: press ENTER to select"
	MsgNoShell        = "No shell commands on this slide"
	MsgAlreadyRun     = "Command already executed"
	MsgSelectCommands = "Select a command with UP/DOWN, ENTER to run, ESC to cancel"
)

// gotoMaxDigits bounds the goto dialog input.
const gotoMaxDigits = 5

// CommandRunner executes shell commands for the presenter.
type CommandRunner interface {
	Run(ctx context.Context, command string) shell.Result
}

// Presenter is the presentation state.
type Presenter struct {
	deck   *slide.Deck
	themes *theme.Table
	runner CommandRunner

	index      int
	themeIdx   int
	animations bool
	timer      bool
	utf8       bool
	start      time.Time
	now        func() time.Time

	mode      Mode
	gotoBuf   string
	selection []int
	sel       int
	pending   *ExecRequest
	message   string
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithTheme selects the starting theme by index.
func WithTheme(i int) Option { return func(p *Presenter) { p.themeIdx = i } }

// WithAnimations sets whether slides are revealed with animations.
func WithAnimations(on bool) Option { return func(p *Presenter) { p.animations = on } }

// WithUTF8 records whether the terminal displays UTF-8.
func WithUTF8(on bool) Option { return func(p *Presenter) { p.utf8 = on } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(p *Presenter) { p.now = now } }

// New returns a presenter on the first slide with animations on and the
// timer hidden. The deck must have at least one slide.
func New(deck *slide.Deck, themes *theme.Table, runner CommandRunner, opts ...Option) *Presenter {
	p := &Presenter{
		deck:       deck,
		themes:     themes,
		runner:     runner,
		animations: true,
		now:        time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	p.themeIdx = ((p.themeIdx % themes.Len()) + themes.Len()) % themes.Len()
	p.start = p.now()
	p.hint()
	return p
}

// Deck returns the presentation.
func (p *Presenter) Deck() *slide.Deck { return p.deck }

// Index returns the current slide index.
func (p *Presenter) Index() int { return p.index }

// Slide returns the current slide.
func (p *Presenter) Slide() *slide.Slide { return &p.deck.Slides[p.index] }

// Mode returns the active mode.
func (p *Presenter) Mode() Mode { return p.mode }

// Theme returns the active theme.
func (p *Presenter) Theme() theme.Theme { return p.themes.At(p.themeIdx) }

// Animations reports whether animations are enabled.
func (p *Presenter) Animations() bool { return p.animations }

// UTF8 reports whether the terminal displays UTF-8.
func (p *Presenter) UTF8() bool { return p.utf8 }

// GotoInput returns the digits typed into the goto dialog.
func (p *Presenter) GotoInput() string { return p.gotoBuf }

// Selected returns the element index of the highlighted shell command and
// whether selection mode is active.
func (p *Presenter) Selected() (int, bool) {
	if p.mode != ShellSelecting {
		return 0, false
	}
	return p.selection[p.sel], true
}

// Pending returns the executing command, if any.
func (p *Presenter) Pending() (ExecRequest, bool) {
	if p.pending == nil {
		return ExecRequest{}, false
	}
	return *p.pending, true
}

// Message returns the transient status message.
func (p *Presenter) Message() string { return p.message }

// Elapsed returns the wall-clock time since the presenter started.
func (p *Presenter) Elapsed() time.Duration { return p.now().Sub(p.start) }

// HandleKey applies one key press.
func (p *Presenter) HandleKey(k Key) Outcome {
	if k.Code == KeyCtrlC {
		return Outcome{Quit: true}
	}
	if p.pending != nil {
		return Outcome{}
	}
	switch p.mode {
	case Help:
		p.mode = Normal
		return Outcome{Redraw: RedrawFull}
	case Goto:
		return p.gotoKey(k)
	case ShellSelecting:
		return p.selectKey(k)
	}
	return p.normalKey(k)
}

func (p *Presenter) normalKey(k Key) Outcome {
	switch {
	case k.Code == KeyRight || k.is(' ') || k.is('l'):
		return p.step(p.index + 1)
	case k.Code == KeyLeft || k.Code == KeyBackspace:
		return p.step(p.index - 1)
	case k.Code == KeyHome || k.is('0'):
		return p.jump(0)
	case k.Code == KeyEnd || k.is('$'):
		return p.jump(p.deck.Len() - 1)
	case k.Code == KeyEnter:
		return p.beginSelect()
	case k.is('u'):
		return p.scroll((*slide.Element).ScrollUp)
	case k.is('d'):
		return p.scroll((*slide.Element).ScrollDown)
	case k.is('g'):
		p.mode, p.gotoBuf = Goto, ""
		return Outcome{Redraw: RedrawFull}
	case k.is('t'):
		p.themeIdx = p.themes.Next(p.themeIdx)
		log.Printf("theme: %s", p.Theme().Name)
		return Outcome{Redraw: RedrawFull, ThemeChanged: true}
	case k.is('a'):
		p.animations = !p.animations
		p.message = "Animations " + onOff(p.animations)
		return Outcome{Redraw: RedrawFull}
	case k.is('T'):
		p.timer = !p.timer
		return Outcome{Redraw: RedrawFull}
	case k.is('r'):
		return Outcome{Redraw: RedrawFull}
	case k.is('h') || k.is('?'):
		p.mode = Help
		return Outcome{Redraw: RedrawFull}
	case k.is('q') || k.Code == KeyEscape:
		return Outcome{Quit: true}
	}
	return Outcome{}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// step moves to a neighboring slide, revealing it with animations.
func (p *Presenter) step(i int) Outcome {
	if !p.moveTo(i) {
		return Outcome{}
	}
	if p.animations {
		return Outcome{Redraw: RedrawAnimated}
	}
	return Outcome{Redraw: RedrawFull}
}

func (p *Presenter) jump(i int) Outcome {
	if !p.moveTo(i) {
		return Outcome{}
	}
	return Outcome{Redraw: RedrawFull}
}

// moveTo changes the current slide. Out-of-range and same-slide requests
// change nothing and report false.
func (p *Presenter) moveTo(i int) bool {
	if i < 0 || i >= p.deck.Len() || i == p.index {
		return false
	}
	p.index = i
	p.message = ""
	p.hint()
	return true
}

// hint shows the shell hint when the current slide has commands left to run.
func (p *Presenter) hint() {
	if p.Slide().HasUnexecuted() {
		p.message = MsgShellHint
	} else if p.message == MsgShellHint {
		p.message = ""
	}
}

func (p *Presenter) scroll(move func(*slide.Element)) Outcome {
	moved := false
	s := p.Slide()
	for _, i := range s.ShellCommands() {
		e := &s.Elements[i]
		if !e.Executed {
			continue
		}
		before := e.Offset
		move(e)
		moved = moved || e.Offset != before
	}
	if !moved {
		return Outcome{}
	}
	return Outcome{Redraw: RedrawOutput}
}

func (p *Presenter) gotoKey(k Key) Outcome {
	if d, ok := k.digit(); ok {
		if len(p.gotoBuf) < gotoMaxDigits {
			p.gotoBuf += string(d)
		}
		return Outcome{Redraw: RedrawFull}
	}
	switch k.Code {
	case KeyBackspace:
		if p.gotoBuf != "" {
			p.gotoBuf = p.gotoBuf[:len(p.gotoBuf)-1]
		}
		return Outcome{Redraw: RedrawFull}
	case KeyEnter:
		n, err := strconv.Atoi(p.gotoBuf)
		p.mode, p.gotoBuf = Normal, ""
		if err == nil {
			p.moveTo(n - 1)
		}
		p.hint()
		return Outcome{Redraw: RedrawFull}
	case KeyEscape:
		p.mode, p.gotoBuf = Normal, ""
		p.hint()
		return Outcome{Redraw: RedrawFull}
	}
	return Outcome{}
}

func (p *Presenter) beginSelect() Outcome {
	cmds := p.Slide().ShellCommands()
	if len(cmds) == 0 {
		p.message = MsgNoShell
		return Outcome{Redraw: RedrawFull}
	}
	p.mode, p.selection, p.sel = ShellSelecting, cmds, 0
	p.message = MsgSelectCommands
	return Outcome{Redraw: RedrawFull}
}

func (p *Presenter) selectKey(k Key) Outcome {
	switch k.Code {
	case KeyUp:
		p.sel = max(p.sel-1, 0)
		return Outcome{Redraw: RedrawFull}
	case KeyDown:
		p.sel = min(p.sel+1, len(p.selection)-1)
		return Outcome{Redraw: RedrawFull}
	case KeyEscape:
		p.endSelect()
		p.message = ""
		p.hint()
		return Outcome{Redraw: RedrawFull}
	case KeyEnter:
		idx := p.selection[p.sel]
		p.endSelect()
		e := &p.Slide().Elements[idx]
		if e.Executed {
			p.message = MsgAlreadyRun
			return Outcome{Redraw: RedrawFull}
		}
		req := &ExecRequest{Slide: p.index, Element: idx, Command: e.Command}
		p.pending = req
		p.message = "Executing: " + e.Command
		return Outcome{Redraw: RedrawFull, Exec: req}
	}
	return Outcome{}
}

func (p *Presenter) endSelect() {
	p.mode, p.selection, p.sel = Normal, nil, 0
}

// Run executes the request's command. It does not touch presentation state
// and may be called off the owning goroutine.
func (p *Presenter) Run(ctx context.Context, req ExecRequest) shell.Result {
	return p.runner.Run(ctx, req.Command)
}

// Complete stores a finished command's output on its element and clears the
// pending execution. Output is stored at most once per element.
func (p *Presenter) Complete(req ExecRequest, res shell.Result) Outcome {
	if p.pending != nil && *p.pending == req {
		p.pending = nil
	}
	e := &p.deck.Slides[req.Slide].Elements[req.Element]
	if !e.SetOutput(res.Lines) {
		return Outcome{}
	}
	log.Printf("exec: %q exit=%d blocked=%t lines=%d", req.Command, res.ExitCode, res.Blocked, len(res.Lines))
	p.message = ""
	if req.Slide == p.index {
		p.hint()
		return Outcome{Redraw: RedrawFull}
	}
	return Outcome{}
}

// Execute runs the request and completes it.
func (p *Presenter) Execute(ctx context.Context, req ExecRequest) Outcome {
	return p.Complete(req, p.Run(ctx, req))
}

// Status is the data shown on the status row.
type Status struct {
	Slide   int // 1-based
	Total   int
	Title   string
	Theme   string
	UTF8    bool
	Timer   string // empty while the timer is hidden
	Message string
}

// SlideText is "Slide n/N".
func (s Status) SlideText() string { return fmt.Sprintf("Slide %d/%d", s.Slide, s.Total) }

// ModeText is "Mode: UTF-8" or "Mode: ASCII".
func (s Status) ModeText() string {
	if s.UTF8 {
		return "Mode: UTF-8"
	}
	return "Mode: ASCII"
}

// Progress is the fraction of the deck shown so far.
func (s Status) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Slide) / float64(s.Total)
}

// Status returns the current status row content.
func (p *Presenter) Status() Status {
	s := Status{
		Slide:   p.index + 1,
		Total:   p.deck.Len(),
		Title:   p.deck.Title,
		Theme:   p.Theme().Name,
		UTF8:    p.utf8,
		Message: p.message,
	}
	if p.timer {
		s.Timer = FormatElapsed(p.Elapsed())
	}
	return s
}

// FormatElapsed renders d as MM:SS. Minutes keep counting past 59.
func FormatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
