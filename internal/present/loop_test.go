package present

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdslides/internal/anim"
	"mdslides/internal/markdown"
	"mdslides/internal/theme"
)

var errNoKeys = errors.New("no more keys")

// fakeBackend is an in-memory screen fed from a key script.
type fakeBackend struct {
	w, h    int
	rows    map[int][]rune
	keys    []Key
	themes  []string
	slept   time.Duration
	flushes int
	initErr error
	closed  bool
}

func newFakeBackend(keys ...Key) *fakeBackend {
	return &fakeBackend{w: 80, h: 24, rows: map[int][]rune{}, keys: keys}
}

func (f *fakeBackend) Init() error  { return f.initErr }
func (f *fakeBackend) Close() error { f.closed = true; return nil }

func (f *fakeBackend) Size() (int, int) { return f.w, f.h }

func (f *fakeBackend) Clear() { f.rows = map[int][]rune{} }

func (f *fakeBackend) ClearLine(row int) { delete(f.rows, row) }

func (f *fakeBackend) DrawText(row, col int, text string, _ Style) {
	if row < 0 || row >= f.h {
		return
	}
	line := f.rows[row]
	for i, r := range []rune(text) {
		c := col + i
		if c < 0 || c >= f.w {
			continue
		}
		for len(line) <= c {
			line = append(line, ' ')
		}
		line[c] = r
	}
	f.rows[row] = line
}

func (f *fakeBackend) ReadKey() (Key, error) {
	if len(f.keys) == 0 {
		return Key{}, errNoKeys
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	return k, nil
}

func (f *fakeBackend) KeyPending() bool { return false }

func (f *fakeBackend) ApplyTheme(t theme.Theme) { f.themes = append(f.themes, t.Name) }

func (f *fakeBackend) Sleep(d time.Duration) { f.slept += d }

func (f *fakeBackend) Flush() error { f.flushes++; return nil }

func (f *fakeBackend) line(row int) string { return strings.TrimRight(string(f.rows[row]), " ") }

func (f *fakeBackend) screen() string {
	var b strings.Builder
	for r := 0; r < f.h; r++ {
		b.WriteString(f.line(r))
		b.WriteByte('\n')
	}
	return b.String()
}

func runDemo(t *testing.T, text string, b *fakeBackend, opts ...Option) (*Presenter, *fakeRunner, error) {
	t.Helper()
	deck := markdown.New(markdown.Options{UTF8: false}).Parse(text)
	r := &fakeRunner{lines: []string{"total 0", "file.txt"}}
	p := New(deck, theme.Default(), r, opts...)
	err := Run(context.Background(), p, b, anim.DefaultTiming())
	return p, r, err
}

func TestRun_DrawsSlideAndChrome(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(Rune('q'))
	_, _, err := runDemo(t, demo, b, WithAnimations(false))
	require.NoError(t, err)
	assert.True(t, b.closed)

	assert.Contains(t, b.line(0), "Slide 1/3")
	assert.Contains(t, b.line(0), "Mode: ASCII")
	assert.Contains(t, b.line(0), "Theme: Dark")
	assert.Contains(t, b.line(3), "Title")
	assert.Contains(t, b.line(4), "intro")
	assert.Contains(t, b.line(b.h-1), "Controls: <-/-> Navigate")
	assert.Equal(t, []string{"Dark"}, b.themes)
}

func TestRun_RevealsWithAnimation_When_Enabled(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(Code(KeyRight), Rune('q'))
	_, _, err := runDemo(t, demo, b)
	require.NoError(t, err)
	assert.Positive(t, b.slept)
	assert.Contains(t, b.line(0), "Slide 2/3")
	assert.Contains(t, b.line(3), "Shell")
	assert.Contains(t, b.line(4), "$ ls -la", "typewriter ends fully drawn")
}

func TestRun_ExecutesSelectedCommand(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(Code(KeyRight), Code(KeyEnter), Code(KeyEnter), Rune('q'))
	p, r, err := runDemo(t, demo, b, WithAnimations(false))
	require.NoError(t, err)
	assert.Equal(t, []string{"ls -la"}, r.calls)

	screen := b.screen()
	assert.Contains(t, screen, "total 0")
	assert.Contains(t, screen, "file.txt")
	assert.Contains(t, screen, markdown.AwaitingOutput, "date has not run")
	_, pending := p.Pending()
	assert.False(t, pending)
}

func TestRun_ShowsSelectionArrows(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(Code(KeyRight), Code(KeyEnter), Code(KeyDown))
	_, _, err := runDemo(t, demo, b, WithAnimations(false))
	require.ErrorIs(t, err, errNoKeys)

	assert.NotContains(t, b.line(4), ">")
	row := -1
	for r := 0; r < b.h; r++ {
		if strings.Contains(b.line(r), "$ date") {
			row = r
		}
	}
	require.NotEqual(t, -1, row)
	assert.Contains(t, b.line(row), "> $ date <")
}

func TestRun_DrawsHelpAndGoto(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(Rune('h'))
	_, _, err := runDemo(t, demo, b)
	require.ErrorIs(t, err, errNoKeys)
	assert.Contains(t, b.screen(), HelpTitle)
	assert.Contains(t, b.screen(), "Toggle animations")

	g := newFakeBackend(Rune('g'), Rune('2'))
	_, _, err = runDemo(t, demo, g)
	require.ErrorIs(t, err, errNoKeys)
	assert.Contains(t, g.line(g.h/2), "Go to slide (1-3): 2")
}

func TestRun_DrawsPlaceholder_When_SlideIsEmpty(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(Rune('q'))
	_, _, err := runDemo(t, "\n\n", b)
	require.NoError(t, err)
	assert.Contains(t, b.line(3), EmptySlide)
}

func TestRun_AppliesTheme_When_Cycled(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(Rune('t'), Rune('t'), Rune('q'))
	_, _, err := runDemo(t, demo, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dark", "Light", "Matrix"}, b.themes)
}

func TestRun_ReturnsError_When_BackendFails(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.initErr = errors.New("no tty")
	_, _, err := runDemo(t, demo, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init terminal")

	_, _, err = runDemo(t, demo, newFakeBackend())
	assert.ErrorIs(t, err, errNoKeys)
}

func TestRun_RecentersTitle_When_WidthChanges(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(Rune('q'))
	b.w = 40
	p, _, err := runDemo(t, demo, b, WithAnimations(false))
	require.NoError(t, err)
	assert.Equal(t, (40-len("Title"))/2, p.Deck().Slides[0].Elements[0].Col)
}
