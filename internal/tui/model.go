// Package tui is the bubbletea backend. The model forwards keys to a
// present.Presenter and renders its state; animation frames and command
// execution arrive as messages.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"mdslides/internal/anim"
	"mdslides/internal/markdown"
	"mdslides/internal/present"
	"mdslides/internal/shell"
	"mdslides/internal/slide"
	"mdslides/internal/theme"
)

// Options configures the model.
type Options struct {
	Timing  anim.Timing
	Context context.Context
	Now     func() time.Time
}

type (
	startRevealMsg struct{}
	revealMsg      struct{ gen int }
	clockMsg       time.Time
	execDoneMsg    struct {
		req present.ExecRequest
		res shell.Result
	}
)

// Model is the bubbletea model.
type Model struct {
	p      *present.Presenter
	timing anim.Timing
	ctx    context.Context
	now    func() time.Time

	width  int
	height int

	keys      keyMap
	help      help.Model
	progress  progress.Model
	spinner   spinner.Model
	gotoInput textinput.Model
	helpView  viewport.Model
	helpWidth int
	helpTheme string

	reveal reveal
}

// New returns a model driving p.
func New(p *present.Presenter, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Timing == (anim.Timing{}) {
		opts.Timing = anim.DefaultTiming()
	}

	ti := textinput.New()
	ti.CharLimit = 5
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	if !p.UTF8() {
		sp.Spinner = spinner.Line
	}

	return Model{
		p:         p,
		timing:    opts.Timing,
		ctx:       opts.Context,
		now:       opts.Now,
		keys:      newKeyMap(p.UTF8()),
		help:      help.New(),
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:   sp,
		gotoInput: ti,
		helpView:  viewport.New(0, 0),
	}
}

// Init starts the first reveal and the clock.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{clockTick()}
	if m.p.Animations() {
		cmds = append(cmds, func() tea.Msg { return startRevealMsg{} })
	}
	return tea.Batch(cmds...)
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.p.Deck().Recenter(msg.Width)
		m.progress.Width = max(msg.Width-4, 10)
		m.help.Width = msg.Width
		m.helpView.Width = msg.Width
		m.helpView.Height = max(msg.Height-1, 1)
		m.refreshHelp()
		return m, m.progress.SetPercent(m.p.Status().Progress())

	case startRevealMsg:
		return m.startReveal()

	case revealMsg:
		if !m.reveal.active || msg.gen != m.reveal.gen {
			return m, nil
		}
		return m.nextFrame()

	case clockMsg:
		return m, clockTick()

	case execDoneMsg:
		m.p.Complete(msg.req, msg.res)
		return m, nil

	case spinner.TickMsg:
		if _, ok := m.p.Pending(); !ok {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case tea.MouseMsg:
		if m.p.Mode() == present.Help {
			var cmd tea.Cmd
			m.helpView, cmd = m.helpView.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// a key finishes the reveal at once and is then handled normally
	m.reveal.active = false

	before := m.p.Index()
	out := m.p.HandleKey(toKey(msg))
	if out.Quit {
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	if m.p.Index() != before {
		cmds = append(cmds, m.progress.SetPercent(m.p.Status().Progress()))
	}
	if out.ThemeChanged {
		m.refreshHelp()
	}
	if m.p.Mode() == present.Goto {
		m.gotoInput.Prompt = present.GotoPrompt(m.p.Deck().Len(), "")
		m.gotoInput.SetValue(m.p.GotoInput())
		m.gotoInput.CursorEnd()
	}
	if out.Exec != nil {
		cmds = append(cmds, m.runExec(*out.Exec), m.spinner.Tick)
	}
	if out.Redraw == present.RedrawAnimated {
		var cmd tea.Cmd
		m, cmd = m.startReveal()
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// runExec runs the command off the update goroutine. The presenter is
// only touched again when execDoneMsg arrives.
func (m Model) runExec(req present.ExecRequest) tea.Cmd {
	p, ctx := m.p, m.ctx
	return func() tea.Msg {
		return execDoneMsg{req: req, res: p.Run(ctx, req)}
	}
}

func (m *Model) refreshHelp() {
	th := m.p.Theme()
	style := glamourStyle(th.Dark(), m.p.UTF8())
	if m.width == 0 || m.helpWidth == m.width && m.helpTheme == style {
		return
	}
	m.helpWidth, m.helpTheme = m.width, style
	m.helpView.SetContent(renderHelp(m.width, th.Dark(), m.p.UTF8()))
	m.helpView.GotoTop()
}

func (m Model) contentBottom() int { return m.height - 4 }

func (m Model) style(st present.Style) lipgloss.Style {
	s := m.p.Theme().Style(st.Role)
	return s.Bold(st.Bold).Faint(st.Dim).Reverse(st.Reverse)
}

// View renders the presenter state.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading slides...\n\nPress 'q' to quit."
	}
	th := m.p.Theme()
	c := newCanvas(m.width, m.height, th.Style(theme.Background))

	if m.p.Mode() == present.Help {
		c.putBlock(0, 0, m.helpView.View())
		return c.String()
	}

	m.chrome(c)
	if m.p.Mode() == present.Goto {
		input := m.gotoInput.View()
		w := lipgloss.Width(input)
		c.put(m.height/2, max((m.width-w)/2, 0), input, m.style(present.Style{Role: theme.Subtitle, Bold: true}))
		return c.String()
	}
	m.elements(c)
	if !m.reveal.active {
		m.outputs(c)
	}
	return c.String()
}

func (m Model) chrome(c *canvas) {
	st := m.p.Status()
	right := []string{st.ModeText(), "Theme: " + st.Theme}
	if st.Timer != "" {
		right = append([]string{"Time: " + st.Timer}, right...)
	}
	c.put(0, 0, statusLine(m.width, st.SlideText(), st.Title, strings.Join(right, "  ")), lipgloss.NewStyle())

	rule := "─"
	if !m.p.UTF8() {
		rule = "-"
	}
	line := strings.Repeat(rule, m.width)
	ruleStyle := m.style(present.Style{Role: theme.Accent})
	c.put(1, 0, line, ruleStyle)

	msg := st.Message
	if _, pending := m.p.Pending(); pending {
		msg = m.spinner.View() + " " + msg
	}
	if msg != "" {
		c.put(m.height-4, 2, msg, m.style(present.Style{Role: theme.Accent, Bold: true}))
	}

	bar := m.progress.View()
	c.put(m.height-3, max((m.width-lipgloss.Width(bar))/2, 0), bar, lipgloss.NewStyle())
	c.put(m.height-2, 0, line, ruleStyle)
	c.put(m.height-1, 1, m.help.View(m.keys), lipgloss.NewStyle())
}

// statusLine lays out the top bar: slide position left, deck title in the
// middle when it fits, mode information right.
func statusLine(width int, left, title, right string) string {
	statusStyle := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("240")).
		Foreground(lipgloss.Color("15")).
		Padding(0, 1)

	available := width - 2
	used := runewidth.StringWidth(left) + runewidth.StringWidth(right)
	if used+4 > available {
		return statusStyle.Render(runewidth.Truncate(left+"  "+right, max(available, 0), "..."))
	}

	gap := available - used
	if title != "" {
		if maxTitle := gap - 4; maxTitle >= 10 {
			title = runewidth.Truncate(title, maxTitle, "...")
			tw := runewidth.StringWidth(title)
			lpad := (gap - tw) / 2
			return statusStyle.Render(left + strings.Repeat(" ", lpad) + title + strings.Repeat(" ", gap-tw-lpad) + right)
		}
	}
	return statusStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) elements(c *canvas) {
	s := m.p.Slide()
	if len(s.Elements) == 0 {
		c.put(3, slide.MinCol, present.EmptySlide, m.style(present.Style{Role: theme.Text, Dim: true}))
		return
	}
	sel, selecting := m.p.Selected()
	order := m.revealOrder()
	for pos, i := range order {
		e := &s.Elements[i]
		f, ok := m.frameFor(pos, e)
		if !ok {
			continue
		}
		if selecting && i == sel {
			m.selection(c, e)
			continue
		}
		m.drawFrame(c, e, f)
	}
}

// drawFrame draws one animation frame of an element. Code lines are
// colored by token.
func (m Model) drawFrame(c *canvas, e *slide.Element, f anim.Frame) {
	st := present.Style{Role: theme.RoleFor(e), Bold: e.Bold, Dim: f.Dim}
	if e.Type != slide.CodeBlock || e.Lang == "" {
		c.put(e.Row, f.Col, f.Text, m.style(st))
		return
	}
	col := f.Col
	for _, sp := range highlight(e.Lang, f.Text) {
		ss := st
		ss.Role = sp.role
		ss.Dim = st.Dim || sp.faint
		c.put(e.Row, col, sp.text, m.style(ss))
		col += runewidth.StringWidth(sp.text)
	}
}

func (m Model) selection(c *canvas, e *slide.Element) {
	left, right := "→", "←"
	if !m.p.UTF8() {
		left, right = ">", "<"
	}
	st := present.Style{Role: theme.RoleFor(e), Bold: e.Bold}
	c.put(e.Row, max(e.Col-2, 0), left, m.style(st))
	rev := st
	rev.Reverse = true
	c.put(e.Row, e.Col, e.Content, m.style(rev))
	c.put(e.Row, e.Col+runewidth.StringWidth(e.Content)+1, right, m.style(st))
}

func (m Model) outputs(c *canvas) {
	s := m.p.Slide()
	pending, isPending := m.p.Pending()
	bottom := m.contentBottom()
	info := m.style(present.Style{Role: theme.Accent, Bold: true})
	for _, i := range s.ShellCommands() {
		e := &s.Elements[i]
		row := e.Row + 1
		window := e.MaxVisible
		if window <= 0 {
			window = slide.DefaultMaxVisible
		}

		placeholder := markdown.AwaitingOutput
		if i+1 < len(s.Elements) && s.Elements[i+1].Type == slide.ShellOutput {
			placeholder = s.Elements[i+1].Content
		}
		if isPending && pending.Slide == m.p.Index() && pending.Element == i {
			placeholder = m.spinner.View() + " " + present.Executing
		}
		v := present.ViewOutput(e, placeholder)

		st := m.style(present.Style{Role: theme.Output, Dim: !e.Executed})
		for j, line := range v.Lines {
			if row+j < bottom {
				c.put(row+j, e.Col+2, line, st)
			}
		}
		if v.Info != "" && row+window < bottom {
			c.put(row+window, e.Col, v.Info, info)
		}
		if hint := row + window + 1; hint < bottom {
			c.put(hint, e.Col, v.Up, info)
			c.put(hint, e.Col+20, v.Down, info)
		}
	}
}
