package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	anchorID     = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)
	checkboxType = regexp.MustCompile(`^checkbox$`)
)

// newPolicy extends the UGC policy with the markup this renderer emits:
// heading anchors, code-block and chroma classes, diagram data attributes
// and GFM task-list checkboxes.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyling()
	p.AllowDataAttributes()
	p.AllowAttrs("id").Matching(anchorID).OnElements("h1", "h2", "h3", "h4", "h5", "h6", "div")
	p.AllowAttrs("type").Matching(checkboxType).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}
