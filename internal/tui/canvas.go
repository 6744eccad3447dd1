package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type segment struct {
	col   int
	text  string
	style lipgloss.Style
}

// canvas places styled text at screen positions and flattens it into the
// string bubbletea draws. Later segments lose where they overlap earlier
// ones on the same row.
type canvas struct {
	w, h int
	rows [][]segment
	bg   lipgloss.Style
}

func newCanvas(w, h int, bg lipgloss.Style) *canvas {
	return &canvas{w: w, h: h, rows: make([][]segment, max(h, 0)), bg: bg}
}

func (c *canvas) put(row, col int, text string, st lipgloss.Style) {
	if row < 0 || row >= c.h || text == "" {
		return
	}
	c.rows[row] = append(c.rows[row], segment{col: col, text: text, style: st})
}

// putBlock places a multi-line block with its top-left corner at row, col.
func (c *canvas) putBlock(row, col int, block string) {
	for i, line := range strings.Split(block, "\n") {
		c.put(row+i, col, line, lipgloss.NewStyle())
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for r, segs := range c.rows {
		if r > 0 {
			b.WriteByte('\n')
		}
		sort.SliceStable(segs, func(i, j int) bool { return segs[i].col < segs[j].col })
		x := 0
		for _, s := range segs {
			text, col := s.text, s.col
			if col < x {
				text = ansi.Cut(text, x-col, ansi.StringWidth(text))
				col = x
			}
			if col >= c.w || text == "" {
				continue
			}
			if col > x {
				b.WriteString(c.bg.Render(strings.Repeat(" ", col-x)))
			}
			text = ansi.Truncate(text, c.w-col, "")
			b.WriteString(s.style.Render(text))
			x = col + ansi.StringWidth(text)
		}
		if x < c.w {
			b.WriteString(c.bg.Render(strings.Repeat(" ", c.w-x)))
		}
	}
	return b.String()
}
