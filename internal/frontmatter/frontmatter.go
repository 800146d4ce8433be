// Package frontmatter extracts the leading `---` delimited YAML block of a
// markdown document.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

var bom = []byte("\xef\xbb\xbf")

// Matter holds the decoded key/value pairs of a front matter block.
type Matter map[string]any

// Title returns the `title` key as text, or "" when it is missing or not a scalar.
func (m Matter) Title() string {
	switch v := m["title"].(type) {
	case string:
		return strings.TrimSpace(v)
	case int, int64, float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// Split separates front matter from the document body. The block is only
// recognized when the very first line is a `---` delimiter and a later line
// closes it. Unterminated blocks and blocks that do not decode to a YAML
// mapping are reported as absent: ok is false and body is src.
func Split(src []byte) (m Matter, body []byte, ok bool) {
	rest := bytes.TrimPrefix(src, bom)

	first, rest, found := cutLine(rest)
	if !found || !isDelimiter(first) {
		return nil, src, false
	}

	var block [][]byte
	for len(rest) > 0 {
		var line []byte
		line, rest, _ = cutLine(rest)
		if isDelimiter(line) {
			m = Matter{}
			if err := yaml.Unmarshal(bytes.Join(block, []byte("\n")), &m); err != nil {
				return nil, src, false
			}
			if m == nil {
				m = Matter{}
			}
			return m, rest, true
		}
		block = append(block, line)
	}
	return nil, src, false
}

// cutLine returns the first line of b without its terminator and the remainder.
// found is false when b holds no newline at all.
func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, found
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t")) == delimiter
}
