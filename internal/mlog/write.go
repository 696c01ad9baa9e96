package mlog

import (
	"io"
	"strings"

	"github.com/dogmatiq/iago/must"
)

// Line is a single structured log line.
//
// It is rendered as the labelled IDs, then the icons, then the non-empty text
// elements joined by SeparatorIcon.
type Line struct {
	IDs   []IconWithLabel
	Icons []Icon
	Text  []string
}

// String returns a log line as a string.
func String(
	ids []IconWithLabel,
	icons []Icon,
	text ...string,
) string {
	return Line{ids, icons, text}.String()
}

// String returns the rendered line.
func (l Line) String() string {
	var w strings.Builder
	l.mustWriteTo(&w)
	return w.String()
}

// WriteTo writes the rendered line to w.
func (l Line) WriteTo(w io.Writer) (n int64, err error) {
	defer must.Recover(&err)
	return int64(l.mustWriteTo(w)), nil
}

func (l Line) mustWriteTo(w io.Writer) (n int) {
	for _, id := range l.IDs {
		n += must.WriteTo(w, id)
		n += must.Write(w, space2)
	}

	for _, icon := range l.Icons {
		n += must.WriteTo(w, icon)
		n += must.Write(w, space1)
	}

	sep := false
	for _, t := range l.Text {
		if t == "" {
			continue
		}

		n += must.Write(w, space1)

		if sep {
			n += must.WriteTo(w, SeparatorIcon)
			n += must.Write(w, space1)
		}

		n += must.WriteString(w, t)
		sep = true
	}

	return n
}

var (
	space1 = []byte{' '}
	space2 = []byte{' ', ' '}
)
