package gateways

import (
	"io"
	"sync"

	"github.com/fatih/color"
)

var prefixColors = []color.Attribute{color.FgCyan, color.FgGreen, color.FgMagenta, color.FgYellow, color.FgBlue}
var prefixIndex = -1

var prefixMu sync.Mutex

const maxPrefixLength = 12

// PrefixWriter is an io.Writer that prefixes each chunk with a colored tool
// name, so interleaved output from xcodebuild, hdiutil and friends stays
// attributable.
type PrefixWriter struct {
	name   string
	writer io.Writer
	c      color.Attribute
}

// NewPrefixWriter wraps w, tagging everything written with name. Each new
// writer picks the next color in the cycle.
func NewPrefixWriter(name string, w io.Writer) io.Writer {
	prefixMu.Lock()
	prefixIndex = (prefixIndex + 1) % len(prefixColors)
	c := prefixColors[prefixIndex]
	prefixMu.Unlock()

	if len(name) > maxPrefixLength {
		name = name[:maxPrefixLength]
	}

	return &PrefixWriter{
		name:   name,
		writer: w,
		c:      c,
	}
}

func (p *PrefixWriter) Write(b []byte) (int, error) {
	out := color.New(p.c)
	if _, err := out.Fprint(p.writer, p.name, " | "); err != nil {
		return 0, err
	}
	if _, err := out.Fprintf(p.writer, "%s", b); err != nil {
		return 0, err
	}
	return len(b), nil
}
