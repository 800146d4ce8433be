package markdown

import (
	"io"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// WriteCSS writes the stylesheet for the class names emitted in highlighted
// code blocks. Unknown style names use chroma's fallback style.
func WriteCSS(w io.Writer, style string) error {
	s := styles.Get(style)
	if s == nil {
		s = styles.Fallback
	}
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	return formatter.WriteCSS(w, s)
}

// HasStyle reports whether chroma knows the named style.
func HasStyle(style string) bool {
	_, ok := styles.Registry[style]
	return ok
}
