package present

import (
	"fmt"

	"mdslides/internal/slide"
)

// OutputView is what a shell output region shows.
type OutputView struct {
	Lines []string // visible output, or the placeholder before execution
	Info  string   // "(a-b/N lines)" when the output does not fit, else empty
	Up    string   // scroll hints, empty when that direction is exhausted
	Down  string
}

// Scroll hints under an output window.
const (
	HintUp   = "Press 'u' for up"
	HintDown = "Press 'd' for down"
)

// ViewOutput returns the output region of a shell command element.
// placeholder is shown before the command runs.
func ViewOutput(e *slide.Element, placeholder string) OutputView {
	if !e.Executed {
		return OutputView{Lines: []string{placeholder}}
	}
	v := OutputView{Lines: e.VisibleLines()}
	if e.MaxOffset() == 0 {
		return v
	}
	v.Info = fmt.Sprintf("(%d-%d/%d lines)", e.Offset+1, e.Offset+len(v.Lines), len(e.Output))
	if e.CanScrollUp() {
		v.Up = HintUp
	}
	if e.CanScrollDown() {
		v.Down = HintDown
	}
	return v
}

// HelpEntry is one line of the help screen.
type HelpEntry struct {
	Keys string
	Desc string
}

// HelpSection groups help entries under a heading.
type HelpSection struct {
	Title   string
	Entries []HelpEntry
}

// HelpTitle heads the help screen.
const HelpTitle = "MARKDOWN SLIDE PRESENTER - HELP"

// HelpDismiss closes the help screen text.
const HelpDismiss = "Press any key to continue..."

// HelpSections returns the help screen content. Arrow glyphs are spelled
// out when the terminal lacks UTF-8.
func HelpSections(utf8 bool) []HelpSection {
	right, left := "→", "←"
	if !utf8 {
		right, left = "Right", "Left"
	}
	return []HelpSection{
		{Title: "Navigation", Entries: []HelpEntry{
			{right + " / Space / l", "Next slide"},
			{left + " / Backspace", "Previous slide"},
			{"g", "Go to specific slide"},
			{"Home / 0", "First slide"},
			{"End / $", "Last slide"},
		}},
		{Title: "Shell commands", Entries: []HelpEntry{
			{"ENTER", "Select a shell command, ENTER again runs it"},
			{"Up / Down", "Move the selection"},
			{"u / d", "Scroll shell output up/down"},
		}},
		{Title: "Display", Entries: []HelpEntry{
			{"t", "Cycle themes"},
			{"a", "Toggle animations"},
			{"T", "Toggle timer"},
			{"r", "Refresh/redraw"},
		}},
		{Title: "Other", Entries: []HelpEntry{
			{"h / ?", "Show this help"},
			{"q / Escape", "Quit"},
		}},
		{Title: "Supported Markdown", Entries: []HelpEntry{
			{"# ## ###", "Headers"},
			{"- item", "Bullet points"},
			{"1. item", "Numbered lists"},
			{"**text**", "Bold text"},
			{"```lang", "Code blocks"},
			{"```$command", "Shell command"},
		}},
	}
}

// Footer returns the controls line.
func Footer(utf8 bool) string {
	nav := "←/→"
	if !utf8 {
		nav = "<-/->"
	}
	return "Controls: " + nav + " Navigate | ENTER Execute | u/d Scroll | t Theme | h Help | q Quit"
}

// GotoPrompt returns the goto dialog prompt for a deck of n slides.
func GotoPrompt(n int, input string) string {
	return fmt.Sprintf("Go to slide (1-%d): %s", n, input)
}
