// Package charset maps text to plain ASCII for terminals without UTF-8 support.
package charset

import (
	"strings"
)

// Replacement is one literal substitution applied by a Table.
type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Table is an ordered list of replacements. Order matters: earlier entries
// are applied first.
type Table struct {
	entries []Replacement
}

// Default returns the built-in table.
func Default() *Table {
	t := &Table{entries: make([]Replacement, len(builtin))}
	copy(t.entries, builtin)
	return t
}

// With returns a copy of t with extra replacements appended. Entries with an
// empty From are skipped.
func (t *Table) With(extra []Replacement) *Table {
	out := &Table{entries: make([]Replacement, 0, len(t.entries)+len(extra))}
	out.entries = append(out.entries, t.entries...)
	for _, r := range extra {
		if r.From == "" {
			continue
		}
		out.entries = append(out.entries, r)
	}
	return out
}

// Len reports the number of replacements.
func (t *Table) Len() int { return len(t.entries) }

// Apply substitutes every known symbol and then squashes whatever non-ASCII
// text remains to one '?' per code point.
func (t *Table) Apply(s string) string {
	if isASCII(s) {
		return s
	}
	for _, r := range t.entries {
		if strings.Contains(s, r.From) {
			s = strings.ReplaceAll(s, r.From, r.To)
		}
	}
	return ASCII(s)
}

// ASCII replaces every non-ASCII sequence with '?'. A leading byte of a
// multi-byte sequence swallows only the continuation bytes that follow it, so
// a truncated sequence never eats the ASCII text after it.
func ASCII(s string) string {
	if isASCII(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x80 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
		for n := continuationLen(c); n > 0 && i+1 < len(s) && isContinuation(s[i+1]); n-- {
			i++
		}
	}
	return b.String()
}

func continuationLen(lead byte) int {
	switch {
	case lead&0xE0 == 0xC0:
		return 1
	case lead&0xF0 == 0xE0:
		return 2
	case lead&0xF8 == 0xF0:
		return 3
	default:
		return 0
	}
}

func isContinuation(c byte) bool { return c&0xC0 == 0x80 }

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

var builtin = []Replacement{
	// German
	{"ä", "ae"}, {"ö", "oe"}, {"ü", "ue"},
	{"Ä", "Ae"}, {"Ö", "Oe"}, {"Ü", "Ue"},
	{"ß", "ss"},

	// Arrows
	{"→", "->"}, {"←", "<-"}, {"↑", "^"},
	{"↓", "v"}, {"⇒", "=>"}, {"⇐", "<="},

	// Bullets and marks
	{"•", "*"}, {"◦", "o"}, {"▪", "*"},
	{"▫", "o"}, {"★", "*"}, {"☆", "*"},
	{"✓", "v"}, {"✗", "x"}, {"✔", "+"},
	{"✘", "x"}, {"⚠", "!"}, {"⚡", "!"},

	// French
	{"é", "e"}, {"è", "e"}, {"ê", "e"},
	{"ë", "e"}, {"à", "a"}, {"â", "a"},
	{"ç", "c"}, {"î", "i"}, {"ï", "i"},
	{"ô", "o"}, {"ù", "u"}, {"û", "u"},
	{"É", "E"}, {"È", "E"}, {"Ê", "E"},
	{"À", "A"}, {"Ç", "C"},

	// Spanish
	{"ñ", "n"}, {"Ñ", "N"}, {"í", "i"},
	{"ó", "o"}, {"ú", "u"}, {"á", "a"},
	{"Í", "I"}, {"Ó", "O"}, {"Ú", "U"},
	{"Á", "A"},

	// Currency and legal
	{"£", "GBP"}, {"€", "EUR"}, {"¥", "YEN"},
	{"©", "(c)"}, {"®", "(R)"}, {"™", "(TM)"},
	{"°", "deg"}, {"±", "+/-"}, {"×", "x"}, {"÷", "/"},

	// Math
	{"≈", "~="}, {"≠", "!="}, {"≤", "<="},
	{"≥", ">="}, {"∞", "inf"},
	{"π", "pi"}, {"α", "alpha"}, {"β", "beta"},
	{"γ", "gamma"}, {"δ", "delta"},

	// Quotes
	{"“", "\""}, {"”", "\""}, {"‘", "'"},
	{"’", "'"}, {"«", "\""}, {"»", "\""},

	// Dashes
	{"—", "--"}, {"–", "-"}, {"…", "..."},

	// Typography
	{"§", "S"}, {"¶", "P"}, {"†", "+"},
	{"‡", "++"}, {"‰", "0/00"},
	{"⁰", "0"}, {"¹", "1"}, {"²", "2"},
	{"³", "3"}, {"⁴", "4"}, {"⁵", "5"},
	{"½", "1/2"}, {"¼", "1/4"}, {"¾", "3/4"},
	{"⅓", "1/3"}, {"⅔", "2/3"},
}
