package ui

import "sync"

// maxLogLines bounds the shared log buffer; the oldest lines are dropped
// once the bound is reached.
const maxLogLines = 500

// logBuffer is the append-only log shared between the render loop and
// background tasks. Appends and reads are mutually exclusive; ordering
// relative to rendering is otherwise unspecified.
type logBuffer struct {
	mu    sync.Mutex
	lines []string
}

func newLogBuffer() *logBuffer {
	return &logBuffer{}
}

// Append adds a line, evicting the oldest line when full.
func (b *logBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.lines) >= maxLogLines {
		b.lines = b.lines[1:]
	}
	b.lines = append(b.lines, line)
}

// Tail returns a copy of the most recent n lines.
func (b *logBuffer) Tail(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := len(b.lines) - n
	if start < 0 {
		start = 0
	}
	out := make([]string, len(b.lines)-start)
	copy(out, b.lines[start:])
	return out
}

// Len returns the number of buffered lines.
func (b *logBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}
