// Package theme maps element roles to terminal colors for each color scheme.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"

	"mdslides/internal/slide"
)

// Role is the part of the screen a color applies to.
type Role int

const (
	Background Role = iota
	Title
	Subtitle
	Text
	Accent
	Code
	Command
	Output
)

// Palette holds one color per role. Values are anything lipgloss.Color
// accepts: ANSI indices ("0" to "15"), 256-color indices or "#rrggbb".
type Palette struct {
	Background string `yaml:"background"`
	Title      string `yaml:"title"`
	Subtitle   string `yaml:"subtitle"`
	Text       string `yaml:"text"`
	Accent     string `yaml:"accent"`
	Code       string `yaml:"code"`
	Command    string `yaml:"command"`
	Output     string `yaml:"output"`
}

// Theme is a named palette.
type Theme struct {
	Name   string
	Colors Palette
}

// ANSI color indices.
const (
	black   = "0"
	red     = "1"
	green   = "2"
	yellow  = "3"
	blue    = "4"
	magenta = "5"
	cyan    = "6"
	white   = "7"
)

func builtin() []Theme {
	return []Theme{
		{Name: "Dark", Colors: Palette{
			Background: black, Title: cyan, Subtitle: yellow, Text: white,
			Accent: green, Code: magenta, Command: green, Output: yellow,
		}},
		{Name: "Light", Colors: Palette{
			Background: white, Title: blue, Subtitle: red, Text: black,
			Accent: green, Code: magenta, Command: green, Output: blue,
		}},
		{Name: "Matrix", Colors: Palette{
			Background: black, Title: green, Subtitle: green, Text: green,
			Accent: white, Code: green, Command: white, Output: green,
		}},
		{Name: "Retro", Colors: Palette{
			Background: black, Title: yellow, Subtitle: cyan, Text: white,
			Accent: magenta, Code: red, Command: green, Output: yellow,
		}},
	}
}

// Color returns the color for a role.
func (t Theme) Color(r Role) lipgloss.Color {
	p := t.Colors
	switch r {
	case Background:
		return lipgloss.Color(p.Background)
	case Title:
		return lipgloss.Color(p.Title)
	case Subtitle:
		return lipgloss.Color(p.Subtitle)
	case Accent:
		return lipgloss.Color(p.Accent)
	case Code:
		return lipgloss.Color(p.Code)
	case Command:
		return lipgloss.Color(p.Command)
	case Output:
		return lipgloss.Color(p.Output)
	default:
		return lipgloss.Color(p.Text)
	}
}

// Style returns a lipgloss style drawing the role's color on the theme
// background.
func (t Theme) Style(r Role) lipgloss.Style {
	s := lipgloss.NewStyle().Background(t.Color(Background))
	if r == Background {
		return s
	}
	return s.Foreground(t.Color(r))
}

// Dark reports whether the theme draws on a dark background.
func (t Theme) Dark() bool {
	return t.Colors.Background != white && t.Colors.Background != "15"
}

// merge fills empty fields of p from def.
func merge(p, def Palette) Palette {
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&p.Background, def.Background)
	fill(&p.Title, def.Title)
	fill(&p.Subtitle, def.Subtitle)
	fill(&p.Text, def.Text)
	fill(&p.Accent, def.Accent)
	fill(&p.Code, def.Code)
	fill(&p.Command, def.Command)
	fill(&p.Output, def.Output)
	return p
}

// Table is the ordered list of themes the presenter cycles through.
type Table struct {
	themes []Theme
}

// Default returns the built-in themes: Dark, Light, Matrix and Retro.
func Default() *Table {
	return &Table{themes: builtin()}
}

// Len returns the number of themes.
func (t *Table) Len() int { return len(t.themes) }

// At returns theme i, wrapping around the table.
func (t *Table) At(i int) Theme {
	n := len(t.themes)
	return t.themes[((i%n)+n)%n]
}

// Next returns the index after i, wrapping to 0.
func (t *Table) Next(i int) int {
	return (i + 1) % len(t.themes)
}

// Index finds a theme by name, ignoring case.
func (t *Table) Index(name string) (int, bool) {
	fold := cases.Fold()
	want := fold.String(name)
	for i, th := range t.themes {
		if fold.String(th.Name) == want {
			return i, true
		}
	}
	return 0, false
}

// Override replaces the non-empty colors of the named theme. Unknown names
// add a new theme whose unset colors come from the first theme.
func (t *Table) Override(name string, p Palette) {
	if i, ok := t.Index(name); ok {
		t.themes[i].Colors = merge(p, t.themes[i].Colors)
		return
	}
	t.themes = append(t.themes, Theme{Name: name, Colors: merge(p, t.themes[0].Colors)})
}

// RoleFor returns the role an element is drawn with.
func RoleFor(e *slide.Element) Role {
	switch e.Type {
	case slide.Header1:
		return Title
	case slide.Header2:
		return Subtitle
	case slide.Header3:
		return Accent
	case slide.CodeBlock:
		return Code
	case slide.ShellCommand:
		return Command
	case slide.ShellOutput:
		return Output
	}
	if e.Emphasis {
		return Accent
	}
	return Text
}
