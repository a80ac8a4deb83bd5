package display

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/efuller/claude-watch/pkg/pricing"
)

// New creates a formatter based on configuration.
func New(cfg Config) Formatter {
	if cfg.Format == "" {
		cfg.Format = FormatTable
	}
	if cfg.Width == 0 {
		cfg.Width = terminalWidth()
	}
	if cfg.ColorEnabled && !stdoutIsTerminal() {
		cfg.ColorEnabled = false
	}

	if cfg.Format == FormatJSON {
		return &jsonFormatter{config: cfg}
	}
	return &tableFormatter{config: cfg}
}

// terminalWidth reports the stdout width, defaulting to 80 columns when
// stdout is not a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// stdoutIsTerminal reports whether stdout is attached to a TTY.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatCount renders an integer with thousand separators.
func formatCount(n int64) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return s
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// formatCost renders a cost in dollars, two decimal places, with a
// tilde marking estimated amounts.
func formatCost(c pricing.Cost) string {
	s := "$" + c.Amount.StringFixed(2)
	if c.Estimated {
		return "~" + s
	}
	return s
}

// progressBar renders a [####----] bar of the given width for a
// percentage clamped to [0, 100].
func progressBar(percent float64, width int) string {
	if width < 2 {
		width = 2
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	inner := width - 2
	filled := int(percent / 100 * float64(inner))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", inner-filled) + "]"
}
