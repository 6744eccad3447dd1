package present

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"mdslides/internal/anim"
	"mdslides/internal/markdown"
	"mdslides/internal/slide"
	"mdslides/internal/theme"
)

// Screen texts.
const (
	EmptySlide = "(empty slide)"
	Executing  = "Executing..."
)

// Run drives p over b until the user quits. It owns p for its duration.
func Run(ctx context.Context, p *Presenter, b Backend, timing anim.Timing) error {
	if err := b.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer b.Close()

	pt := &painter{b: b, p: p, timing: timing}
	b.ApplyTheme(p.Theme())
	if err := pt.paint(p.Animations()); err != nil {
		return err
	}

	for {
		k, err := b.ReadKey()
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		out := p.HandleKey(k)
		if out.Quit {
			return nil
		}
		if out.ThemeChanged {
			b.ApplyTheme(p.Theme())
		}
		if out.Exec != nil {
			// show the executing state before blocking on the command
			if err := pt.paint(false); err != nil {
				return err
			}
			out = p.Execute(ctx, *out.Exec)
		}
		if err := pt.redraw(out.Redraw); err != nil {
			return err
		}
	}
}

type painter struct {
	b      Backend
	p      *Presenter
	timing anim.Timing
	width  int
}

func (pt *painter) redraw(r Redraw) error {
	switch r {
	case RedrawAnimated:
		return pt.paint(true)
	case RedrawFull:
		return pt.paint(false)
	case RedrawOutput:
		_, h := pt.b.Size()
		pt.outputs(h, true)
		return pt.b.Flush()
	}
	return nil
}

// contentBottom is the first row below the slide area.
func contentBottom(h int) int { return h - 4 }

func (pt *painter) paint(animated bool) error {
	w, h := pt.b.Size()
	if w != pt.width {
		pt.p.Deck().Recenter(w)
		pt.width = w
	}
	pt.b.Clear()

	if pt.p.Mode() == Help {
		pt.help(w, h)
		return pt.b.Flush()
	}

	pt.chrome(w, h)
	if pt.p.Mode() == Goto {
		prompt := GotoPrompt(pt.p.Deck().Len(), pt.p.GotoInput())
		pt.b.DrawText(h/2, slide.CenterCol(prompt, w), prompt, Style{Role: theme.Subtitle, Bold: true})
		return pt.b.Flush()
	}

	pt.elements(h, animated)
	pt.outputs(h, false)
	return pt.b.Flush()
}

func (pt *painter) rule() string {
	if pt.p.UTF8() {
		return "─"
	}
	return "-"
}

// chrome draws the status header, separators, message, progress bar and
// footer around the slide area.
func (pt *painter) chrome(w, h int) {
	st := pt.p.Status()
	bar := Style{Role: theme.Accent, Bold: true}

	pt.b.DrawText(0, 1, st.SlideText(), bar)
	right := []string{st.ModeText(), "Theme: " + st.Theme}
	if st.Timer != "" {
		right = append([]string{"Time: " + st.Timer}, right...)
	}
	r := strings.Join(right, "  ")
	pt.b.DrawText(0, max(w-1-runewidth.StringWidth(r), 0), r, bar)

	line := strings.Repeat(pt.rule(), max(w, 0))
	pt.b.DrawText(1, 0, line, Style{Role: theme.Accent})

	if st.Message != "" {
		pt.b.DrawText(h-4, 2, st.Message, Style{Role: theme.Accent, Bold: true})
	}
	progress := ProgressBar(st.Progress(), w-10, pt.p.UTF8())
	pt.b.DrawText(h-3, slide.CenterCol(progress, w), progress, Style{Role: theme.Title})
	pt.b.DrawText(h-2, 0, line, Style{Role: theme.Accent})
	footer := Footer(pt.p.UTF8())
	pt.b.DrawText(h-1, slide.CenterCol(footer, w), footer, Style{Role: theme.Text, Dim: true})
}

// ProgressBar renders frac as a bar of the given width followed by a
// percentage.
func ProgressBar(frac float64, width int, utf8 bool) string {
	full, empty := "█", "░"
	if !utf8 {
		full, empty = "#", "-"
	}
	width = max(width-5, 1)
	frac = min(max(frac, 0), 1)
	n := int(frac*float64(width) + 0.5)
	return strings.Repeat(full, n) + strings.Repeat(empty, width-n) + fmt.Sprintf(" %d%%", int(frac*100+0.5))
}

func elementStyle(e *slide.Element, dim bool) Style {
	return Style{
		Role: theme.RoleFor(e),
		Bold: e.Bold,
		Dim:  dim || e.Type == slide.ShellOutput && !e.Executed,
	}
}

func (pt *painter) elements(h int, animated bool) {
	s := pt.p.Slide()
	if len(s.Elements) == 0 {
		pt.b.DrawText(3, slide.MinCol, EmptySlide, Style{Role: theme.Text, Dim: true})
		return
	}

	var reveal []*slide.Element
	for i := range s.Elements {
		e := &s.Elements[i]
		if e.Type == slide.ShellOutput || e.Row >= contentBottom(h) {
			continue
		}
		reveal = append(reveal, e)
	}

	if animated {
		c := &canvas{b: pt.b}
		anim.PlaySlide(c, reveal, pt.timing, pt.p.now)
		if sel, ok := pt.p.Selected(); ok {
			pt.selection(&s.Elements[sel])
		}
		return
	}
	sel, selecting := pt.p.Selected()
	for _, e := range reveal {
		if selecting && e == &s.Elements[sel] {
			pt.selection(e)
			continue
		}
		pt.b.DrawText(e.Row, e.Col, e.Content, elementStyle(e, false))
	}
}

// selection draws the highlighted shell command between arrows.
func (pt *painter) selection(e *slide.Element) {
	left, right := "→", "←"
	if !pt.p.UTF8() {
		left, right = ">", "<"
	}
	st := elementStyle(e, false)
	pt.b.DrawText(e.Row, max(e.Col-2, 0), left, st)
	st.Reverse = true
	pt.b.DrawText(e.Row, e.Col, e.Content, st)
	pt.b.DrawText(e.Row, e.Col+runewidth.StringWidth(e.Content)+1, right, elementStyle(e, false))
}

// outputs draws the output region under each shell command on the slide.
func (pt *painter) outputs(h int, clear bool) {
	s := pt.p.Slide()
	pending, isPending := pt.p.Pending()
	for _, i := range s.ShellCommands() {
		e := &s.Elements[i]
		row := e.Row + 1
		window := e.MaxVisible
		if window <= 0 {
			window = slide.DefaultMaxVisible
		}
		if clear {
			for r := row; r <= row+window+1 && r < contentBottom(h); r++ {
				pt.b.ClearLine(r)
			}
		}

		placeholder := markdown.AwaitingOutput
		if i+1 < len(s.Elements) && s.Elements[i+1].Type == slide.ShellOutput {
			placeholder = s.Elements[i+1].Content
		}
		if isPending && pending.Slide == pt.p.Index() && pending.Element == i {
			placeholder = Executing
		}
		v := ViewOutput(e, placeholder)

		st := Style{Role: theme.Output, Dim: !e.Executed}
		for j, line := range v.Lines {
			if row+j >= contentBottom(h) {
				break
			}
			pt.b.DrawText(row+j, e.Col+2, line, st)
		}
		info := Style{Role: theme.Accent, Bold: true}
		if v.Info != "" && row+window < contentBottom(h) {
			pt.b.DrawText(row+window, e.Col, v.Info, info)
		}
		if hintRow := row + window + 1; hintRow < contentBottom(h) {
			if v.Up != "" {
				pt.b.DrawText(hintRow, e.Col, v.Up, info)
			}
			if v.Down != "" {
				pt.b.DrawText(hintRow, e.Col+20, v.Down, info)
			}
		}
	}
}

func (pt *painter) help(w, h int) {
	row := 1
	draw := func(text string, st Style) {
		if row < h {
			pt.b.DrawText(row, 4, text, st)
		}
		row++
	}
	pt.b.DrawText(row, slide.CenterCol(HelpTitle, w), HelpTitle, Style{Role: theme.Title, Bold: true})
	row += 2
	for _, sec := range HelpSections(pt.p.UTF8()) {
		draw(sec.Title+":", Style{Role: theme.Subtitle, Bold: true})
		for _, e := range sec.Entries {
			draw("  "+runewidth.FillRight(e.Keys, 20)+" "+e.Desc, Style{Role: theme.Text})
		}
		row++
	}
	draw(HelpDismiss, Style{Role: theme.Accent})
}

// canvas plays animation frames on a backend.
type canvas struct {
	b Backend
}

func (c *canvas) DrawFrame(e *slide.Element, f anim.Frame) {
	if f.ClearLine {
		c.b.ClearLine(e.Row)
	}
	c.b.DrawText(e.Row, f.Col, f.Text, elementStyle(e, f.Dim))
	_ = c.b.Flush()
}

func (c *canvas) Sleep(d time.Duration) { c.b.Sleep(d) }

func (c *canvas) KeyPending() bool { return c.b.KeyPending() }
