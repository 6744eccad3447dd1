package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"mdslides/internal/present"
)

// helpMarkdown renders the help sections as markdown tables.
func helpMarkdown(utf8 bool) string {
	var b strings.Builder
	b.WriteString("# " + present.HelpTitle + "\n\n")
	for _, sec := range present.HelpSections(utf8) {
		b.WriteString("## " + sec.Title + "\n\n| Key | Action |\n|-----|--------|\n")
		for _, e := range sec.Entries {
			b.WriteString("| `" + strings.ReplaceAll(e.Keys, "|", "\\|") + "` | " + e.Desc + " |\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("*" + present.HelpDismiss + "*\n")
	return b.String()
}

// glamourStyle picks the markdown style for the screen.
func glamourStyle(dark, utf8 bool) string {
	switch {
	case !utf8:
		return "ascii"
	case dark:
		return "dark"
	}
	return "light"
}

// renderHelp renders the help screen for the given width.
func renderHelp(width int, dark, utf8 bool) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyle(dark, utf8)),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	md := helpMarkdown(utf8)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return "Error rendering help: " + err.Error()
	}
	return strings.TrimRight(out, "\n")
}
