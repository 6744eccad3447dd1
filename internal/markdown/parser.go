// Package markdown turns slide markdown into positioned slide elements.
//
// Only a small subset is recognized: headers, bullets, numbered items, bold
// text, fenced code and shell fences ("```$command"). Every other line is
// plain text, so parsing never fails.
package markdown

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"mdslides/internal/charset"
	"mdslides/internal/slide"
)

// ErrNoSlides is returned by callers that require at least one slide.
var ErrNoSlides = errors.New("no slides found (slides are separated by a line containing only ---)")

const (
	// Separator is the line that splits slides.
	Separator = "---"

	fence      = "```"
	shellFence = "```$"

	// AwaitingOutput is the placeholder shown under a shell command that has
	// not run yet.
	AwaitingOutput = "[awaiting execution]"

	firstRow   = 3
	indentCol  = 4
	codeIndent = "    "

	// DefaultRowDelay staggers the reveal of consecutive rows.
	DefaultRowDelay = 50 * time.Millisecond

	defaultWidth = 80
)

var (
	numberedRE = regexp.MustCompile(`^\d+\. `)
	boldRE     = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

// Options configures a Parser.
type Options struct {
	UTF8       bool           // terminal verified to display UTF-8
	Width      int            // screen width used to center level-one headers
	Fallback   *charset.Table // ASCII substitutions, charset.Default() when nil
	MaxVisible int            // shell output window height
	RowDelay   time.Duration  // reveal stagger per row, DefaultRowDelay when zero
}

// Parser converts markdown text to a deck. It holds no per-parse state and
// may be reused.
type Parser struct {
	opts Options
}

// New returns a parser with defaults filled in.
func New(opts Options) *Parser {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Fallback == nil {
		opts.Fallback = charset.Default()
	}
	if opts.MaxVisible <= 0 {
		opts.MaxVisible = slide.DefaultMaxVisible
	}
	if opts.RowDelay <= 0 {
		opts.RowDelay = DefaultRowDelay
	}
	return &Parser{opts: opts}
}

// Parse splits text on separator lines and parses each segment into a slide.
// A segment with at least one line, even a blank one, becomes a slide.
func (p *Parser) Parse(text string) *slide.Deck {
	deck := &slide.Deck{}
	var segment []string
	flush := func() {
		if len(segment) > 0 {
			deck.Slides = append(deck.Slides, p.parseSlide(segment))
			segment = nil
		}
	}
	for _, line := range splitLines(text) {
		if line == Separator {
			flush()
			continue
		}
		segment = append(segment, line)
	}
	flush()

	if len(deck.Slides) > 0 {
		for _, e := range deck.Slides[0].Elements {
			if e.Type == slide.Header1 {
				deck.Title = e.Content
				break
			}
		}
	}
	return deck
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

type scanner struct {
	p       *Parser
	row     int
	inCode  bool
	inShell bool
	lang    string
	out     []slide.Element
}

func (p *Parser) parseSlide(lines []string) slide.Slide {
	s := &scanner{p: p, row: firstRow}
	for _, line := range lines {
		s.line(line)
	}
	return slide.Slide{Elements: s.out}
}

func (s *scanner) line(line string) {
	switch {
	case s.inShell:
		// the fence carries the command; its body is never shown
		if strings.HasPrefix(line, fence) {
			s.inShell = false
		}
		return
	case strings.HasPrefix(line, shellFence):
		s.inShell = true
		s.shell(strings.TrimSpace(line[len(shellFence):]))
		return
	case line == "":
		s.row++
		return
	case strings.HasPrefix(line, fence):
		s.inCode = !s.inCode
		s.lang = ""
		if s.inCode {
			s.lang = strings.TrimSpace(line[len(fence):])
		}
		s.row++
		return
	case s.inCode:
		s.emit(slide.Element{
			Content:   codeIndent + line,
			Type:      slide.CodeBlock,
			Col:       indentCol,
			Animation: slide.Typewriter,
			Lang:      s.lang,
		})
		return
	}
	s.emit(s.classify(line))
}

func (s *scanner) shell(command string) {
	s.emit(slide.Element{
		Content:    "$ " + command,
		Type:       slide.ShellCommand,
		Col:        indentCol,
		Bold:       true,
		Animation:  slide.Typewriter,
		Command:    command,
		MaxVisible: s.p.opts.MaxVisible,
	})
	s.emit(slide.Element{
		Content:   AwaitingOutput,
		Type:      slide.ShellOutput,
		Col:       indentCol,
		Animation: slide.None,
	})
	// room for the output window, its line counter and scroll hints
	s.row += s.p.opts.MaxVisible + 2
}

func (s *scanner) classify(line string) slide.Element {
	e := slide.Element{Col: slide.MinCol, Animation: slide.FadeIn}
	switch {
	case strings.HasPrefix(line, "# "):
		e.Type, e.Content, e.Bold, e.Animation = slide.Header1, line[2:], true, slide.SlideIn
	case strings.HasPrefix(line, "## "):
		e.Type, e.Content, e.Bold, e.Animation = slide.Header2, line[3:], true, slide.SlideIn
	case strings.HasPrefix(line, "### "):
		e.Type, e.Content, e.Bold, e.Animation = slide.Header3, line[4:], true, slide.None
	case strings.HasPrefix(line, "- "):
		e.Type, e.Content, e.Col, e.Animation = slide.Bullet, s.bullet()+line[2:], indentCol, slide.SlideIn
	case numberedRE.MatchString(line):
		e.Type, e.Content, e.Col, e.Animation = slide.Numbered, line, indentCol, slide.SlideIn
	default:
		e.Type, e.Content = slide.Text, line
	}

	if boldRE.MatchString(e.Content) {
		e.Content = boldRE.ReplaceAllString(e.Content, "$1")
		e.Bold = true
		e.Emphasis = e.Type == slide.Text
	}
	return e
}

func (s *scanner) bullet() string {
	if s.p.opts.UTF8 {
		return "• "
	}
	return "* "
}

func (s *scanner) emit(e slide.Element) {
	if !s.p.opts.UTF8 {
		e.Content = s.p.opts.Fallback.Apply(e.Content)
	}
	if e.Type == slide.Header1 {
		e.Col = slide.CenterCol(e.Content, s.p.opts.Width)
	}
	e.Row = s.row
	e.Delay = delay(e.Type, s.row, s.p.opts.RowDelay)
	s.out = append(s.out, e)
	s.row++
}

// delay holds slide-in headers back a little longer than their row alone
// would, so the title lands after the rows around it start.
func delay(t slide.Type, row int, perRow time.Duration) time.Duration {
	d := time.Duration(row) * perRow
	switch t {
	case slide.Header1:
		d += 4 * perRow
	case slide.Header2:
		d += 2 * perRow
	}
	return d
}
