package term

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdslides/internal/present"
	"mdslides/internal/theme"
)

func newTestTerminal(t *testing.T, w, h int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term := newTerminal(screen)
	require.NoError(t, term.Init())
	screen.SetSize(w, h)
	term.Clear()
	require.NoError(t, term.Flush())
	t.Cleanup(func() { _ = term.Close() })
	return term, screen
}

// rows returns the simulated screen as text, one string per row.
func rows(screen tcell.SimulationScreen) []string {
	cells, w, h := screen.GetContents()
	out := make([]string, h)
	for y := 0; y < h; y++ {
		var b strings.Builder
		for x := 0; x < w; x++ {
			c := cells[y*w+x]
			if len(c.Runes) == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(c.Runes[0])
		}
		out[y] = b.String()
	}
	return out
}

func readKey(t *testing.T, term *Terminal) present.Key {
	t.Helper()
	type result struct {
		k   present.Key
		err error
	}
	ch := make(chan result, 1)
	go func() {
		k, err := term.ReadKey()
		ch <- result{k, err}
	}()
	select {
	case r := <-ch:
		require.NoError(t, r.err)
		return r.k
	case <-time.After(2 * time.Second):
		t.Fatal("no key arrived")
		return present.Key{}
	}
}

func TestDrawText_PositionsAndClips(t *testing.T) {
	t.Parallel()

	term, screen := newTestTerminal(t, 10, 5)
	term.DrawText(2, 4, "hi", present.Style{Role: theme.Text})
	term.DrawText(1, 7, "hello", present.Style{Role: theme.Text})
	term.DrawText(3, -2, "abcdef", present.Style{Role: theme.Text})
	term.DrawText(7, 0, "off screen", present.Style{})
	term.DrawText(0, 12, "off screen", present.Style{})
	require.NoError(t, term.Flush())

	got := rows(screen)
	assert.Equal(t, "          ", got[0])
	assert.Equal(t, "       hel", got[1])
	assert.Equal(t, "    hi    ", got[2])
	assert.Equal(t, "cdef      ", got[3])
}

func TestDrawText_AdvancesTwoColumns_For_WideRunes(t *testing.T) {
	t.Parallel()

	term, screen := newTestTerminal(t, 10, 2)
	term.DrawText(0, 0, "日本x", present.Style{Role: theme.Text})
	require.NoError(t, term.Flush())

	cells, _, _ := screen.GetContents()
	assert.Equal(t, []rune{'日'}, cells[0].Runes)
	assert.Equal(t, []rune{'本'}, cells[2].Runes)
	assert.Equal(t, []rune{'x'}, cells[4].Runes)
}

func TestClearLine_PaintsThemeBackground(t *testing.T) {
	t.Parallel()

	term, screen := newTestTerminal(t, 4, 3)
	term.ApplyTheme(theme.Default().At(1))
	term.DrawText(1, 0, "xxxx", present.Style{Role: theme.Text})
	term.ClearLine(1)
	term.ClearLine(9)
	require.NoError(t, term.Flush())

	assert.Equal(t, "    ", rows(screen)[1])
	cells, _, _ := screen.GetContents()
	_, bg, _ := cells[4].Style.Decompose()
	assert.Equal(t, tcell.PaletteColor(7), bg, "light theme background")
}

func TestClear_EmptiesScreen(t *testing.T) {
	t.Parallel()

	term, screen := newTestTerminal(t, 4, 2)
	term.DrawText(0, 0, "abcd", present.Style{})
	term.Clear()
	require.NoError(t, term.Flush())
	assert.Equal(t, []string{"    ", "    "}, rows(screen))
}

func TestStyle_MapsRolesAndAttributes(t *testing.T) {
	t.Parallel()

	term, _ := newTestTerminal(t, 4, 2)
	fg, bg, attrs := term.style(present.Style{Role: theme.Title, Bold: true, Reverse: true}).Decompose()
	assert.Equal(t, tcell.PaletteColor(6), fg)
	assert.Equal(t, tcell.PaletteColor(0), bg)
	assert.NotZero(t, attrs&tcell.AttrBold)
	assert.NotZero(t, attrs&tcell.AttrReverse)
	assert.Zero(t, attrs&tcell.AttrDim)

	assert.Equal(t, tcell.ColorDefault, color(""))
	assert.Equal(t, tcell.PaletteColor(208), color("208"))
	assert.Equal(t, tcell.NewRGBColor(0x12, 0x34, 0x56), color("#123456"))
}

func TestReadKey_DeliversInjectedKeys(t *testing.T) {
	t.Parallel()

	term, screen := newTestTerminal(t, 10, 5)
	screen.InjectKey(tcell.KeyRune, 'l', tcell.ModNone)
	screen.InjectKey(tcell.KeyRight, 0, tcell.ModCtrl)
	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	assert.Equal(t, present.Rune('l'), readKey(t, term))
	assert.Equal(t, present.Code(present.KeyRight), readKey(t, term))
	assert.Equal(t, present.Code(present.KeyEscape), readKey(t, term))
}

func TestKeyPending_ReportsQueuedKey(t *testing.T) {
	t.Parallel()

	term, screen := newTestTerminal(t, 10, 5)
	assert.False(t, term.KeyPending())
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	assert.Eventually(t, term.KeyPending, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, present.Rune('q'), readKey(t, term))
	assert.False(t, term.KeyPending())
}

func TestReadKey_Fails_When_Closed(t *testing.T) {
	t.Parallel()

	term, _ := newTestTerminal(t, 10, 5)
	require.NoError(t, term.Close())
	_, err := term.ReadKey()
	assert.ErrorIs(t, err, errClosed)
	assert.NoError(t, term.Close(), "closing twice is harmless")
}

func TestClose_Returns_When_KeyBufferFull(t *testing.T) {
	t.Parallel()

	term, screen := newTestTerminal(t, 10, 5)
	// the screen's own queue is small, so keep feeding until ours is full
	require.Eventually(t, func() bool {
		screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
		return len(term.keys) == cap(term.keys)
	}, 5*time.Second, time.Millisecond)
	for i := 0; i < 4; i++ {
		screen.InjectKey(tcell.KeyRune, 'y', tcell.ModNone)
	}
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, term.Close())
	select {
	case <-term.done:
	case <-time.After(time.Second):
		t.Fatal("event loop still blocked after Close")
	}
}
