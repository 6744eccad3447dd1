package present

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdslides/internal/markdown"
	"mdslides/internal/shell"
	"mdslides/internal/slide"
	"mdslides/internal/theme"
)

const demo = `# Title
intro
---
## Shell
` + "```$ls -la\n```\n```$date\n```" + `
---
## Last
- point
`

type fakeRunner struct {
	calls []string
	lines []string
}

func (r *fakeRunner) Run(_ context.Context, cmd string) shell.Result {
	r.calls = append(r.calls, cmd)
	return shell.Result{Lines: r.lines, Succeeded: true}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newPresenter(t *testing.T, text string, opts ...Option) (*Presenter, *fakeRunner) {
	t.Helper()
	deck := markdown.New(markdown.Options{UTF8: true}).Parse(text)
	require.NotZero(t, deck.Len())
	r := &fakeRunner{lines: []string{"out"}}
	return New(deck, theme.Default(), r, opts...), r
}

func press(p *Presenter, keys ...Key) Outcome {
	var out Outcome
	for _, k := range keys {
		out = p.HandleKey(k)
	}
	return out
}

func TestHandleKey_StaysOnLastSlide_When_NextPastEnd(t *testing.T) {
	t.Parallel()

	p, _ := newPresenter(t, demo)
	press(p, Code(KeyEnd))
	require.Equal(t, 2, p.Index())

	out := press(p, Code(KeyRight))
	assert.Equal(t, 2, p.Index())
	assert.Equal(t, RedrawNone, out.Redraw)
	assert.False(t, out.Quit)
}

func TestHandleKey_Navigates(t *testing.T) {
	t.Parallel()

	p, _ := newPresenter(t, demo)
	cases := []struct {
		key   Key
		index int
	}{
		{Rune(' '), 1},
		{Rune('l'), 2},
		{Code(KeyLeft), 1},
		{Code(KeyBackspace), 0},
		{Code(KeyLeft), 0},
		{Rune('$'), 2},
		{Rune('0'), 0},
		{Code(KeyRight), 1},
		{Code(KeyHome), 0},
	}
	for i, tc := range cases {
		p.HandleKey(tc.key)
		assert.Equal(t, tc.index, p.Index(), "step %d", i)
	}
}

func TestHandleKey_AnimatesSteps_When_AnimationsEnabled(t *testing.T) {
	t.Parallel()

	p, _ := newPresenter(t, demo)
	assert.Equal(t, RedrawAnimated, press(p, Code(KeyRight)).Redraw)
	assert.Equal(t, RedrawFull, press(p, Code(KeyHome)).Redraw, "jumps are drawn at once")
	assert.Equal(t, RedrawNone, press(p, Code(KeyHome)).Redraw, "already there")

	press(p, Rune('a'))
	assert.False(t, p.Animations())
	assert.Equal(t, "Animations off", p.Message())
	assert.Equal(t, RedrawFull, press(p, Code(KeyRight)).Redraw)
}

func TestHandleKey_ShowsShellHint_When_SlideHasUnexecutedCommands(t *testing.T) {
	t.Parallel()

	p, _ := newPresenter(t, demo)
	assert.Empty(t, p.Message())

	press(p, Code(KeyRight))
	assert.Equal(t, MsgShellHint, p.Message())

	press(p, Code(KeyRight))
	assert.Empty(t, p.Message(), "hint is cleared on a slide without commands")

	first, _ := newPresenter(t, "```$ls\n```")
	assert.Equal(t, MsgShellHint, first.Message(), "hint is shown for the first slide too")
}

func TestHandleKey_Quits(t *testing.T) {
	t.Parallel()

	for _, k := range []Key{Rune('q'), Code(KeyEscape), Code(KeyCtrlC)} {
		p, _ := newPresenter(t, demo)
		assert.True(t, p.HandleKey(k).Quit)
	}
}

func TestHandleKey_CyclesThemes(t *testing.T) {
	t.Parallel()

	p, _ := newPresenter(t, demo)
	var names []string
	for range 5 {
		out := p.HandleKey(Rune('t'))
		assert.True(t, out.ThemeChanged)
		names = append(names, p.Theme().Name)
	}
	assert.Equal(t, []string{"Light", "Matrix", "Retro", "Dark", "Light"}, names)

	q, _ := newPresenter(t, demo, WithTheme(2))
	assert.Equal(t, "Matrix", q.Theme().Name)
}

func TestGoto_JumpsToSlide_When_NumberInRange(t *testing.T) {
	t.Parallel()

	p, _ := newPresenter(t, demo)
	press(p, Rune('g'))
	require.Equal(t, Goto, p.Mode())

	press(p, Rune('3'), Rune('x'))
	assert.Equal(t, "3", p.GotoInput(), "non-digits are ignored")

	out := press(p, Code(KeyEnter))
	assert.Equal(t, Normal, p.Mode())
	assert.Equal(t, 2, p.Index())
	assert.Equal(t, RedrawFull, out.Redraw)
	assert.Empty(t, p.GotoInput())
}

func TestGoto_ClosesSilently_When_NumberInvalid(t *testing.T) {
	t.Parallel()

	for _, digits := range [][]Key{nil, {Rune('0')}, {Rune('4')}, {Rune('9'), Rune('9')}} {
		p, _ := newPresenter(t, demo)
		press(p, Code(KeyRight), Rune('g'))
		press(p, digits...)
		press(p, Code(KeyEnter))
		assert.Equal(t, Normal, p.Mode())
		assert.Equal(t, 1, p.Index())
		assert.Equal(t, MsgShellHint, p.Message(), "closing re-runs the hint check")
	}
}

func TestGoto_EditsInput(t *testing.T) {
	t.Parallel()

	p, _ := newPresenter(t, demo)
	press(p, Rune('g'))
	for _, r := range "1234567" {
		p.HandleKey(Rune(r))
	}
	assert.Equal(t, "12345", p.GotoInput())

	press(p, Code(KeyBackspace), Code(KeyBackspace))
	assert.Equal(t, "123", p.GotoInput())

	press(p, Code(KeyEscape))
	assert.Equal(t, Normal, p.Mode())
	assert.Equal(t, 0, p.Index())

	press(p, Rune('g'))
	assert.Empty(t, p.GotoInput(), "input starts empty each time")
}

func TestHelp_ClosesOnAnyKey(t *testing.T) {
	t.Parallel()

	for _, open := range []Key{Rune('h'), Rune('?')} {
		p, _ := newPresenter(t, demo)
		press(p, open)
		require.Equal(t, Help, p.Mode())

		out := press(p, Rune('l'))
		assert.Equal(t, Normal, p.Mode())
		assert.Equal(t, RedrawFull, out.Redraw)
		assert.Equal(t, 0, p.Index(), "the closing key is not applied")
	}
}

func TestSelect_ShowsMessage_When_SlideHasNoCommands(t *testing.T) {
	t.Parallel()

	p, _ := newPresenter(t, demo)
	out := press(p, Code(KeyEnter))
	assert.Equal(t, Normal, p.Mode())
	assert.Equal(t, MsgNoShell, p.Message())
	assert.Nil(t, out.Exec)
}

func TestSelect_ClampsSelection(t *testing.T) {
	t.Parallel()

	p, _ := newPresenter(t, demo)
	press(p, Code(KeyRight), Code(KeyEnter))
	require.Equal(t, ShellSelecting, p.Mode())

	cmds := p.Slide().ShellCommands()
	sel, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, cmds[0], sel)

	press(p, Code(KeyUp))
	sel, _ = p.Selected()
	assert.Equal(t, cmds[0], sel)

	press(p, Code(KeyDown), Code(KeyDown), Code(KeyDown))
	sel, _ = p.Selected()
	assert.Equal(t, cmds[1], sel)

	press(p, Rune('l'))
	assert.Equal(t, 1, p.Index(), "navigation keys are inert while selecting")

	press(p, Code(KeyEscape))
	assert.Equal(t, Normal, p.Mode())
	assert.Equal(t, MsgShellHint, p.Message())
	_, ok = p.Selected()
	assert.False(t, ok)
}

func TestSelect_ExecutesOnce_When_Confirmed(t *testing.T) {
	t.Parallel()

	p, r := newPresenter(t, demo)
	out := press(p, Code(KeyRight), Code(KeyEnter), Code(KeyDown), Code(KeyEnter))
	require.NotNil(t, out.Exec)
	assert.Equal(t, "date", out.Exec.Command)
	assert.Equal(t, 1, out.Exec.Slide)
	assert.Equal(t, Normal, p.Mode())

	pending, ok := p.Pending()
	require.True(t, ok)
	assert.Equal(t, *out.Exec, pending)

	// while pending nothing but Ctrl-C gets through
	assert.Equal(t, Outcome{}, press(p, Code(KeyRight)))
	assert.Equal(t, 1, p.Index())

	req := *out.Exec
	p.Execute(context.Background(), req)
	_, ok = p.Pending()
	assert.False(t, ok)
	assert.Equal(t, []string{"date"}, r.calls)

	e := &p.Slide().Elements[req.Element]
	assert.True(t, e.Executed)
	assert.Equal(t, []string{"out"}, e.Output)
	assert.Equal(t, MsgShellHint, p.Message(), "ls is still unexecuted")

	// a second completion is ignored
	assert.Equal(t, Outcome{}, p.Complete(req, shell.Result{Lines: []string{"again"}}))
	assert.Equal(t, []string{"out"}, e.Output)

	// selecting it again does not re-run it
	out = press(p, Code(KeyEnter), Code(KeyDown), Code(KeyEnter))
	assert.Nil(t, out.Exec)
	assert.Equal(t, MsgAlreadyRun, p.Message())
	assert.Len(t, r.calls, 1)
}

func TestSelect_QuitsWithCtrlC_When_Pending(t *testing.T) {
	t.Parallel()

	p, _ := newPresenter(t, demo)
	press(p, Code(KeyRight), Code(KeyEnter), Code(KeyEnter))
	_, pending := p.Pending()
	require.True(t, pending)

	assert.False(t, p.HandleKey(Rune('q')).Quit)
	assert.True(t, p.HandleKey(Code(KeyCtrlC)).Quit)
}

func TestScroll_MovesAllExecutedOutputs(t *testing.T) {
	t.Parallel()

	p, _ := newPresenter(t, demo)
	press(p, Code(KeyRight))
	s := p.Slide()
	cmds := s.ShellCommands()
	long := make([]string, 8)
	for i := range long {
		long[i] = "x"
	}
	s.Elements[cmds[0]].SetOutput(long)
	s.Elements[cmds[1]].SetOutput(append(long, "y", "z"))

	assert.Equal(t, RedrawNone, press(p, Rune('u')).Redraw, "already at the top")
	assert.Equal(t, RedrawOutput, press(p, Rune('d')).Redraw)
	assert.Equal(t, 1, s.Elements[cmds[0]].Offset)
	assert.Equal(t, 1, s.Elements[cmds[1]].Offset)

	for range 10 {
		p.HandleKey(Rune('d'))
	}
	assert.Equal(t, 3, s.Elements[cmds[0]].Offset)
	assert.Equal(t, 5, s.Elements[cmds[1]].Offset)
	assert.Equal(t, RedrawNone, press(p, Rune('d')).Redraw)
}

func TestStatus_ReportsTimer_When_Visible(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Unix(1000, 0)}
	p, _ := newPresenter(t, demo, WithClock(c.now), WithUTF8(true))
	st := p.Status()
	assert.Equal(t, "Slide 1/3", st.SlideText())
	assert.Equal(t, "Title", st.Title)
	assert.Equal(t, "Dark", st.Theme)
	assert.Equal(t, "Mode: UTF-8", st.ModeText())
	assert.Empty(t, st.Timer)

	c.t = c.t.Add(75 * time.Second)
	press(p, Rune('T'))
	assert.Equal(t, "01:15", p.Status().Timer)

	press(p, Rune('T'))
	c.t = c.t.Add(10 * time.Second)
	press(p, Rune('T'))
	assert.Equal(t, "01:25", p.Status().Timer, "toggling does not reset the clock")
}

func TestFormatElapsed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "00:00", FormatElapsed(0))
	assert.Equal(t, "00:59", FormatElapsed(59*time.Second+900*time.Millisecond))
	assert.Equal(t, "61:01", FormatElapsed(61*time.Minute+time.Second))
}

func TestViewOutput(t *testing.T) {
	t.Parallel()

	e := &slide.Element{Type: slide.ShellCommand, MaxVisible: 3}
	v := ViewOutput(e, markdown.AwaitingOutput)
	assert.Equal(t, []string{markdown.AwaitingOutput}, v.Lines)
	assert.Empty(t, v.Info)

	e.SetOutput([]string{"a", "b", "c", "d", "e"})
	v = ViewOutput(e, "")
	assert.Equal(t, []string{"a", "b", "c"}, v.Lines)
	assert.Equal(t, "(1-3/5 lines)", v.Info)
	assert.Empty(t, v.Up)
	assert.Equal(t, HintDown, v.Down)

	e.ScrollDown()
	e.ScrollDown()
	v = ViewOutput(e, "")
	assert.Equal(t, "(3-5/5 lines)", v.Info)
	assert.Equal(t, HintUp, v.Up)
	assert.Empty(t, v.Down)

	short := &slide.Element{Type: slide.ShellCommand, MaxVisible: 3}
	short.SetOutput([]string{"one"})
	assert.Empty(t, ViewOutput(short, "").Info)
}

func TestProgressBar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#####----- 50%", ProgressBar(0.5, 15, false))
	assert.Equal(t, "██████████ 100%", ProgressBar(1, 15, true))
	assert.Equal(t, "---------- 0%", ProgressBar(-1, 15, false))
}
