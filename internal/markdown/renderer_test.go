package markdown

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/erkantaylan/markview/internal/logger"
)

func TestRender_HeadingAndBold(t *testing.T) {
	r := NewRenderer()

	res := r.Render("# Hello\n\nSome **bold** text.")

	require.Len(t, res.TOC, 1)
	assert.Equal(t, TocEntry{ID: "hello", Text: "Hello", Level: 1}, res.TOC[0])
	assert.Contains(t, res.HTML, `<h1 id="hello">`)
	assert.Contains(t, res.HTML, "<strong>bold</strong>")
}

func TestRender_Empty(t *testing.T) {
	res := NewRenderer().Render("")

	assert.Equal(t, "", res.HTML)
	assert.NotNil(t, res.TOC)
	assert.Empty(t, res.TOC)
}

func TestRender_DuplicateHeadings(t *testing.T) {
	res := NewRenderer().Render("# Intro\n\n## Intro\n\n### Intro\n")

	ids := make([]string, 0, len(res.TOC))
	for _, e := range res.TOC {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"intro", "intro-2", "intro-3"}, ids)
	assert.Contains(t, res.HTML, `<h2 id="intro-2">`)
	assert.Contains(t, res.HTML, `<h3 id="intro-3">`)
}

func TestRender_SuffixDoesNotReuseLiteralHeading(t *testing.T) {
	res := NewRenderer().Render("# Intro 2\n\n# Intro\n\n# Intro\n")

	require.Len(t, res.TOC, 3)
	assert.Equal(t, "intro-2", res.TOC[0].ID)
	assert.Equal(t, "intro", res.TOC[1].ID)
	assert.Equal(t, "intro-3", res.TOC[2].ID)
}

func TestRender_TocOrderAndLevels(t *testing.T) {
	md := strings.Join([]string{
		"# One",
		"text",
		"## Two",
		"> ### Three",
		"",
		"- item",
		"",
		"###### Six",
		"",
		"Setext",
		"------",
	}, "\n")

	res := NewRenderer().Render(md)

	want := []TocEntry{
		{ID: "one", Text: "One", Level: 1},
		{ID: "two", Text: "Two", Level: 2},
		{ID: "three", Text: "Three", Level: 3},
		{ID: "six", Text: "Six", Level: 6},
		{ID: "setext", Text: "Setext", Level: 2},
	}
	assert.Equal(t, want, res.TOC)
}

func TestRender_HeadingMarkupKeptInHTML(t *testing.T) {
	res := NewRenderer().Render("## The **bold** `code` and [link](https://example.com)\n")

	require.Len(t, res.TOC, 1)
	assert.Equal(t, "The bold code and link", res.TOC[0].Text)
	assert.Equal(t, "the-bold-code-and-link", res.TOC[0].ID)
	assert.Contains(t, res.HTML, "<strong>bold</strong>")
	assert.Contains(t, res.HTML, "<code>code</code>")
	assert.Contains(t, res.HTML, `href="https://example.com"`)
}

func TestRender_HeadingEntitiesResolved(t *testing.T) {
	res := NewRenderer().Render("# Fish &amp; Chips\n")

	require.Len(t, res.TOC, 1)
	assert.Equal(t, "Fish & Chips", res.TOC[0].Text)
	assert.Equal(t, "fish-chips", res.TOC[0].ID)
}

func TestRender_CodeSpanHeadingTextIsLiteral(t *testing.T) {
	res := NewRenderer().Render("# `a &amp; b` and x &amp; y\n")

	require.Len(t, res.TOC, 1)
	assert.Equal(t, "a &amp; b and x & y", res.TOC[0].Text)
	assert.Contains(t, res.HTML, "<code>a &amp;amp; b</code>")
}

func TestRender_RawHTMLCannotClaimGeneratedIDs(t *testing.T) {
	md := "<h2 id=\"intro\">Fake</h2>\n\n" +
		"<div id=\"diagram-0\" data-diagram-id=\"diagram-0\">fake</div>\n\n" +
		"Inline <span data-diagram-id=\"diagram-0\">span</span>.\n\n" +
		"## Intro\n\n```mermaid\ngraph LR\n```\n"

	res := NewRenderer().Render(md)

	assert.Equal(t, 1, strings.Count(res.HTML, ` id="intro"`))
	assert.Equal(t, 1, strings.Count(res.HTML, ` id="diagram-0"`))
	assert.Equal(t, 1, strings.Count(res.HTML, `data-diagram-id=`))
	assert.Contains(t, res.HTML, `<div class="mermaid" id="diagram-0" data-diagram-id="diagram-0">`)
	assert.Contains(t, res.HTML, "Fake</h2>")
	require.Len(t, res.TOC, 1)
	assert.Equal(t, "intro", res.TOC[0].ID)
}

func TestRender_PunctuationHeadingGetsPlaceholder(t *testing.T) {
	res := NewRenderer().Render("# !!!\n\n# ???\n")

	require.Len(t, res.TOC, 2)
	assert.Equal(t, "section", res.TOC[0].ID)
	assert.Equal(t, "section-2", res.TOC[1].ID)
}

func TestRender_Diagrams(t *testing.T) {
	md := "```mermaid\ngraph TD;\n  A-->B;\n```\n\ntext\n\n```Mermaid\nsequenceDiagram\n```\n"

	res := NewRenderer().Render(md)

	assert.Contains(t, res.HTML, `<div class="mermaid" id="diagram-0" data-diagram-id="diagram-0">`)
	assert.Contains(t, res.HTML, `<div class="mermaid" id="diagram-1" data-diagram-id="diagram-1">`)
	assert.Contains(t, res.HTML, "graph TD;\n  A--&gt;B;\n")
	assert.NotContains(t, res.HTML, "chroma")
	assert.Empty(t, res.TOC)
}

func TestRender_DiagramIDReservedFromHeadings(t *testing.T) {
	res := NewRenderer().Render("# Diagram 0\n\n```mermaid\ngraph LR\n```\n")

	require.Len(t, res.TOC, 1)
	assert.Equal(t, "diagram-0-2", res.TOC[0].ID)
	assert.Contains(t, res.HTML, `data-diagram-id="diagram-0"`)
}

func TestRender_HighlightedPython(t *testing.T) {
	res := NewRenderer().Render("```python\ndef f(): pass\n```\n")

	assert.Contains(t, res.HTML, `<div class="code-block language-python">`)
	assert.Contains(t, res.HTML, `class="chroma"`)
	assert.Contains(t, res.HTML, "def")
}

func TestRender_UnknownLanguageAutoDetected(t *testing.T) {
	res := NewRenderer().Render("```nosuchlang\nplain words\n```\n\n```\nmore words\n```\n")

	assert.Equal(t, 2, strings.Count(res.HTML, `<div class="code-block language-auto">`))
	assert.Contains(t, res.HTML, "plain words")
	assert.Contains(t, res.HTML, "more words")
}

func TestRender_CodeIsEscaped(t *testing.T) {
	res := NewRenderer().Render("```html\n<script>alert(1)</script>\n```\n")

	assert.NotContains(t, res.HTML, "<script>")
	assert.Contains(t, res.HTML, "alert")
}

func TestRender_Sanitizes(t *testing.T) {
	cases := map[string]string{
		"script":  "<script>alert('x')</script>\n\nafter",
		"onerror": `<img src="x.png" onerror="alert(1)">`,
		"onclick": `<p onclick="alert(1)">click</p>`,
		"js url":  "[click](javascript:alert(1))",
		"iframe":  `<iframe src="https://evil.example"></iframe>`,
	}

	r := NewRenderer()
	for name, md := range cases {
		t.Run(name, func(t *testing.T) {
			out := strings.ToLower(r.Render(md).HTML)
			assert.NotContains(t, out, "<script")
			assert.NotContains(t, out, "onerror")
			assert.NotContains(t, out, "onclick")
			assert.NotContains(t, out, "javascript:")
			assert.NotContains(t, out, "<iframe")
		})
	}
}

func TestRender_GFM(t *testing.T) {
	md := "| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n\nvisit https://example.com\n\n- [x] done\n- [ ] todo\n\nline one\nline two\n"

	res := NewRenderer().Render(md)

	assert.Contains(t, res.HTML, "<table>")
	assert.Contains(t, res.HTML, "<del>gone</del>")
	assert.Contains(t, res.HTML, `href="https://example.com"`)
	assert.Contains(t, res.HTML, `type="checkbox"`)
	assert.Contains(t, res.HTML, "line one<br")
}

func TestRender_FrontMatterNotRendered(t *testing.T) {
	res := NewRenderer().Render("---\ntitle: My Doc\n---\n# Other Heading\n")

	require.Len(t, res.TOC, 1)
	assert.Equal(t, "other-heading", res.TOC[0].ID)
	assert.NotContains(t, res.HTML, "My Doc")
	assert.NotContains(t, res.HTML, "<hr")
}

func TestRender_Deterministic(t *testing.T) {
	md := "# A\n\n# A\n\n```mermaid\ngraph\n```\n\n```go\nfunc main() {}\n```\n"
	r := NewRenderer()

	first := r.Render(md)
	second := r.Render(md)

	assert.Equal(t, first, second)
	assert.Equal(t, first, NewRenderer().Render(md))
}

func TestRender_Concurrent(t *testing.T) {
	md := "# Title\n\n## Part\n\n```mermaid\ngraph\n```\n\n```js\nconst a = 1\n```\n"
	r := NewRenderer()
	want := r.Render(md)

	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Render(md)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestCodeBlockRenderer_FallsBackToPlain(t *testing.T) {
	cases := map[string]renderer.NodeRendererFunc{
		"panic": func(util.BufWriter, []byte, ast.Node, bool) (ast.WalkStatus, error) {
			panic("boom")
		},
		"error": func(w util.BufWriter, _ []byte, _ ast.Node, _ bool) (ast.WalkStatus, error) {
			_, _ = w.WriteString("<partial")
			return ast.WalkStop, errors.New("tokenise failed")
		},
	}

	for name, highlight := range cases {
		t.Run(name, func(t *testing.T) {
			var logs bytes.Buffer
			l := logger.New(&logs, log.DebugLevel)
			cb := newCodeBlockRenderer(l)
			cb.highlight = highlight
			r := &Renderer{log: l}
			r.build(cb)

			res := r.Render("# Code\n\n```go\nx := 1 < 2\n```\n")

			assert.Contains(t, res.HTML, `<div class="code-block language-go"><pre><code>x := 1 &lt; 2`)
			assert.NotContains(t, res.HTML, "partial")
			assert.Len(t, res.TOC, 1)
			assert.Contains(t, logs.String(), "highlight failed")
		})
	}
}
