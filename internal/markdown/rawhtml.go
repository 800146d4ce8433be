package markdown

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// rawHTMLRenderer writes HTML found in the source through a policy that drops
// ids and data attributes, so authored markup cannot claim an anchor or a
// diagram id that the renderer hands out.
type rawHTMLRenderer struct {
	policy *bluemonday.Policy
}

func newRawHTMLRenderer() *rawHTMLRenderer {
	p := bluemonday.UGCPolicy()
	p.AllowStyling()
	return &rawHTMLRenderer{policy: p}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *rawHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
}

func (r *rawHTMLRenderer) renderHTMLBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.HTMLBlock)
	if entering {
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(source))
		}
		_, _ = w.Write(r.policy.SanitizeBytes(buf.Bytes()))
		return ast.WalkContinue, nil
	}
	if n.HasClosure() {
		_, _ = w.Write(r.policy.SanitizeBytes(n.ClosureLine.Value(source)))
	}
	return ast.WalkContinue, nil
}

func (r *rawHTMLRenderer) renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*ast.RawHTML)
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		_, _ = w.Write(r.policy.SanitizeBytes(seg.Value(source)))
	}
	return ast.WalkSkipChildren, nil
}
