package markdown

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/erkantaylan/markview/internal/logger"
)

// DiagramLanguage is the fence tag that marks a block for client-side diagram rendering.
const DiagramLanguage = "mermaid"

const (
	diagramIDAttr   = "data-diagram-id"
	autoLanguage    = "auto"
	containerPrefix = `<div class="code-block language-`
)

var errNotHighlighted = errors.New("highlighter fell back to plain text")

var classToken = regexp.MustCompile(`^[a-z0-9_-]+$`)

// normalizeLanguage trims and lower-cases a fence info tag.
func normalizeLanguage(lang []byte) string {
	return strings.ToLower(strings.TrimSpace(string(lang)))
}

func isDiagram(lang []byte) bool {
	return normalizeLanguage(lang) == DiagramLanguage
}

// languageClass resolves the container class suffix for a declared tag.
// Unknown or missing tags, and tags chroma only knows under an unsafe name,
// resolve to "auto".
func languageClass(lang string) string {
	if lang == "" {
		return autoLanguage
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return autoLanguage
	}
	if classToken.MatchString(lang) {
		return lang
	}
	if cfg := lexer.Config(); cfg != nil {
		for _, alias := range cfg.Aliases {
			if a := strings.ToLower(alias); classToken.MatchString(a) {
				return a
			}
		}
	}
	return autoLanguage
}

// funcCapture pulls a single node renderer func out of a NodeRenderer.
type funcCapture struct {
	kind ast.NodeKind
	fn   renderer.NodeRendererFunc
}

func (c *funcCapture) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	if kind == c.kind {
		c.fn = fn
	}
}

// codeBlockRenderer renders fenced code blocks: diagram placeholders for
// mermaid fences, chroma-highlighted markup for everything else.
type codeBlockRenderer struct {
	highlight renderer.NodeRendererFunc
	log       *logger.Logger
}

func newCodeBlockRenderer(log *logger.Logger) *codeBlockRenderer {
	r := &codeBlockRenderer{log: log}

	hl := highlighting.NewHTMLRenderer(
		highlighting.WithGuessLanguage(true),
		highlighting.WithFormatOptions(
			chromahtml.WithClasses(true),
		),
		highlighting.WithWrapperRenderer(r.wrapPlain),
	)
	capture := &funcCapture{kind: ast.KindFencedCodeBlock}
	hl.RegisterFuncs(capture)
	r.highlight = capture.fn

	return r
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	if id, ok := n.AttributeString(diagramIDAttr); ok {
		renderDiagram(w, source, n, id.([]byte))
		return ast.WalkSkipChildren, nil
	}

	lang := normalizeLanguage(n.Language(source))
	_, _ = w.WriteString(containerPrefix)
	_, _ = w.WriteString(languageClass(lang))
	_, _ = w.WriteString(`">`)

	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	if err := r.tryHighlight(bw, source, n); err != nil {
		if !errors.Is(err, errNotHighlighted) {
			r.log.RenderFallback(lang, err)
		}
		writePlainCode(w, source, n)
	} else {
		_ = bw.Flush()
		_, _ = w.Write(buf.Bytes())
	}

	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}

// tryHighlight runs the highlighter into w, converting panics into errors so
// a single bad block never aborts the document.
func (r *codeBlockRenderer) tryHighlight(w util.BufWriter, source []byte, n *ast.FencedCodeBlock) (err error) {
	if r.highlight == nil {
		return errNotHighlighted
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("highlighter panic: %v", p)
		}
	}()
	_, err = r.highlight(w, source, n, true)
	return err
}

// wrapPlain is called by the highlighter around every block. Highlighted
// blocks carry chroma's own <pre>; the plain path only happens when chroma
// failed to tokenise, so it is logged here.
func (r *codeBlockRenderer) wrapPlain(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	if ctx.Highlighted() {
		return
	}
	if entering {
		lang, _ := ctx.Language()
		r.log.RenderFallback(string(lang), errNotHighlighted)
		_, _ = w.WriteString("<pre><code>")
		return
	}
	_, _ = w.WriteString("</code></pre>\n")
}

func writePlainCode(w util.BufWriter, source []byte, n *ast.FencedCodeBlock) {
	_, _ = w.WriteString("<pre><code>")
	writeLines(w, source, n)
	_, _ = w.WriteString("</code></pre>\n")
}

// renderDiagram writes the placeholder that the client-side diagram library hydrates.
func renderDiagram(w util.BufWriter, source []byte, n *ast.FencedCodeBlock, id []byte) {
	_, _ = w.WriteString(`<div class="mermaid" id="`)
	_, _ = w.Write(util.EscapeHTML(id))
	_, _ = w.WriteString(`" ` + diagramIDAttr + `="`)
	_, _ = w.Write(util.EscapeHTML(id))
	_, _ = w.WriteString(`">`)
	writeLines(w, source, n)
	_, _ = w.WriteString("</div>\n")
}

func writeLines(w util.BufWriter, source []byte, n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
}
