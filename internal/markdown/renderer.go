package markdown

import (
	"bytes"
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/erkantaylan/markview/internal/frontmatter"
	"github.com/erkantaylan/markview/internal/logger"
)

// TocEntry is one heading of the rendered document.
type TocEntry struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Result is the output of a render pass.
type Result struct {
	HTML string     `json:"html"`
	TOC  []TocEntry `json:"toc"`
}

// Renderer converts markdown text to sanitized HTML and a table of contents.
// It keeps no state between calls and is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	log    *logger.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for highlighting fallbacks.
func WithLogger(l *logger.Logger) Option {
	return func(r *Renderer) {
		r.log = l
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{log: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	r.build(newCodeBlockRenderer(r.log))
	return r
}

func (r *Renderer) build(codeBlocks *codeBlockRenderer) {
	r.md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // GitHub Flavored Markdown (tables, strikethrough, autolinks, task lists)
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithUnsafe(), // raw HTML is left to the sanitizer
			renderer.WithNodeRenderers(
				util.Prioritized(codeBlocks, 100),
				util.Prioritized(newRawHTMLRenderer(), 100),
			),
		),
	)
	r.policy = newPolicy()
}

// Render converts markdown to sanitized HTML. A leading front matter block is
// not rendered. Render never fails: code blocks that cannot be highlighted
// degrade to escaped text.
func (r *Renderer) Render(source string) Result {
	src := []byte(source)
	if _, body, ok := frontmatter.Split(src); ok {
		src = body
	}

	doc := r.md.Parser().Parse(text.NewReader(src))
	toc := annotate(doc, src)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		r.log.Error("render failed", "error", err)
	}

	return Result{
		HTML: r.policy.Sanitize(buf.String()),
		TOC:  toc,
	}
}

// annotate assigns diagram ids and heading ids in document order and
// collects the table of contents. Diagram ids are reserved first so no
// heading slug can shadow one.
func annotate(doc ast.Node, src []byte) []TocEntry {
	slugs := newSlugger()

	diagrams := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if block, ok := n.(*ast.FencedCodeBlock); ok {
			if isDiagram(block.Language(src)) {
				id := "diagram-" + strconv.Itoa(diagrams)
				block.SetAttributeString(diagramIDAttr, []byte(id))
				slugs.reserve(id)
				diagrams++
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	toc := []TocEntry{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		title := plainText(heading, src)
		id := slugs.unique(title)
		heading.SetAttributeString("id", []byte(id))
		toc = append(toc, TocEntry{ID: id, Text: title, Level: heading.Level})
		return ast.WalkSkipChildren, nil
	})

	return toc
}

// plainText flattens the inline content of n, dropping raw HTML and
// resolving escapes and entities. Code span text is taken literally.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			for child := t.FirstChild(); child != nil; child = child.NextSibling() {
				if txt, ok := child.(*ast.Text); ok {
					b.Write(txt.Segment.Value(src))
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			b.Write(t.Label(src))
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.WriteString(unescape(t.Segment.Value(src)))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.WriteString(unescape(t.Value))
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}

func unescape(v []byte) string {
	return html.UnescapeString(string(util.UnescapePunctuations(v)))
}
