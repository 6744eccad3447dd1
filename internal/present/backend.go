package present

import (
	"time"

	"mdslides/internal/theme"
)

// Style is how a backend draws a piece of text. Colors come from the theme
// applied last through ApplyTheme.
type Style struct {
	Role    theme.Role
	Bold    bool
	Dim     bool
	Reverse bool
}

// Backend is a full-screen terminal the loop draws on. Rows and columns are
// 0-based; text outside the screen is clipped by the backend.
type Backend interface {
	Init() error
	Close() error
	Size() (width, height int)
	Clear()
	ClearLine(row int)
	DrawText(row, col int, text string, st Style)
	// ReadKey blocks until a key is pressed.
	ReadKey() (Key, error)
	// KeyPending reports whether ReadKey would return at once.
	KeyPending() bool
	ApplyTheme(t theme.Theme)
	Sleep(d time.Duration)
	Flush() error
}
