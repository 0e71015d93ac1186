// Package render turns parser events into output lines.
package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/illusionman1212/gifmetadata-go/pkg/gifmeta"
)

const noTrailerMessage = "file was incompatible and therefore gifmetadata may have missed some data, " +
	"recommended that you view this file in a hex editor to get more information"

// Text writes the grep-able format:
//
//	comment: <text>
//	application: <identifier><auth code>
//	- <subblock>
//	plain text: <text>
//
// Text is cut at its first NUL byte.
type Text struct {
	w io.Writer

	// Prefix starts every line, e.g. "name.gif: " when several files are
	// printed together.
	Prefix string
	// Dev also prints warnings about unknown bytes.
	Dev bool

	label *color.Color
	warn  *color.Color
	fail  *color.Color
}

// NewText returns a renderer writing to w. With colored false no escape
// codes are written; otherwise color follows the terminal detection of
// fatih/color.
func NewText(w io.Writer, colored bool) *Text {
	t := &Text{
		w:     w,
		label: color.New(color.FgCyan),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed, color.Bold),
	}
	if !colored {
		t.label.DisableColor()
		t.warn.DisableColor()
		t.fail.DisableColor()
	}
	return t
}

func (t *Text) OnExtension(ev gifmeta.ExtensionEvent) {
	text := cString(ev.Text)
	switch ev.Kind {
	case gifmeta.ExtComment:
		t.line(t.label.Sprint("comment:"), text)
	case gifmeta.ExtApplication:
		t.line(t.label.Sprint("application:"), text)
	case gifmeta.ExtApplicationSubblock:
		t.line(t.label.Sprint("-"), text)
	case gifmeta.ExtPlainText:
		t.line(t.label.Sprint("plain text:"), text)
	}
}

func (t *Text) OnStateChange(gifmeta.State) {}

// Warnings prints the warnings of a finished parse.
func (t *Text) Warnings(res *gifmeta.Result) {
	for _, w := range res.Warnings {
		var msg string
		switch w.Kind {
		case gifmeta.WarnUnknownByte:
			if !t.Dev {
				continue
			}
			msg = fmt.Sprintf("offset %d: %s", w.Offset, w.Detail)
		case gifmeta.WarnNoTrailer:
			msg = noTrailerMessage
		default:
			msg = w.Detail
		}
		t.line(t.warn.Sprint("[warning]"), msg)
	}
}

// Error prints a fatal error for name.
func (t *Text) Error(name string, err error) {
	fmt.Fprintf(t.w, "%s %s: %v\n", t.fail.Sprint("[error]"), name, err)
}

func (t *Text) line(label string, text any) {
	fmt.Fprintf(t.w, "%s%s %s\n", t.Prefix, label, text)
}

// cString returns b up to its first NUL, as a C string would print.
func cString(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}
