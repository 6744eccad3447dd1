package present

// KeyCode identifies a key. Printable keys use KeyRune with Key.Rune set.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyCtrlC
	KeyUnknown
)

// Key is one key press, independent of the terminal library that read it.
type Key struct {
	Code KeyCode
	Rune rune
}

// Rune returns the key for a printable character.
func Rune(r rune) Key { return Key{Code: KeyRune, Rune: r} }

// Code returns the key for a special key.
func Code(c KeyCode) Key { return Key{Code: c} }

func (k Key) is(r rune) bool { return k.Code == KeyRune && k.Rune == r }

func (k Key) digit() (rune, bool) {
	if k.Code == KeyRune && k.Rune >= '0' && k.Rune <= '9' {
		return k.Rune, true
	}
	return 0, false
}
