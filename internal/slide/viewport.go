package slide

// The methods below form the scroll window over a shell command's output.
// Offset always stays within [0, MaxOffset()].

func (e *Element) window() int {
	if e.MaxVisible <= 0 {
		return DefaultMaxVisible
	}
	return e.MaxVisible
}

// MaxOffset is the largest valid Offset.
func (e *Element) MaxOffset() int {
	return max(0, len(e.Output)-e.window())
}

// ScrollUp moves the window up one line, stopping at the top.
func (e *Element) ScrollUp() {
	if e.Offset > 0 {
		e.Offset--
	}
}

// ScrollDown moves the window down one line, stopping at the last full page.
func (e *Element) ScrollDown() {
	if e.Offset < e.MaxOffset() {
		e.Offset++
	}
}

// CanScrollUp reports whether ScrollUp would move.
func (e *Element) CanScrollUp() bool { return e.Offset > 0 }

// CanScrollDown reports whether ScrollDown would move.
func (e *Element) CanScrollDown() bool { return e.Offset < e.MaxOffset() }

// VisibleLines returns the output lines inside the window.
func (e *Element) VisibleLines() []string {
	if e.Offset >= len(e.Output) {
		return nil
	}
	end := min(e.Offset+e.window(), len(e.Output))
	return e.Output[e.Offset:end]
}

// SetOutput stores command output and marks the element executed. Output is
// only ever set once; later calls are ignored and report false.
func (e *Element) SetOutput(lines []string) bool {
	if e.Executed {
		return false
	}
	e.Executed = true
	e.Output = lines
	e.Offset = 0
	return true
}
