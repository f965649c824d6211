// Package terminal holds small helpers for an interactive terminal.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const defaultWidth = 80

// Width returns the width of stdout, or 80 when it is not a terminal.
func Width() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// LinesFor returns how many rows textLength characters occupy at width,
// plus the empty row left by the Enter key.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	lines := (textLength + width - 1) / width
	if lines < 1 {
		lines = 1
	}
	return lines + 1
}

// ClearPreviousLines erases a prompt and the answer typed into it, so secrets
// such as a pasted connection string do not stay on screen.
func ClearPreviousLines(w io.Writer, textLength int) {
	fmt.Fprint(w, clearSequence(LinesFor(textLength, Width())))
}

func clearSequence(lines int) string {
	var b strings.Builder
	for i := 0; i < lines; i++ {
		b.WriteString("\r\x1b[2K")
		if i < lines-1 {
			b.WriteString("\x1b[1A")
		}
	}
	return b.String()
}
