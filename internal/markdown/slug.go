package markdown

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// placeholderSlug is used when heading text has no letters or digits.
const placeholderSlug = "section"

// Slugify converts heading text into a lowercase, URL-safe identifier.
// Diacritics are stripped and every run of other characters becomes a single hyphen.
func Slugify(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	if b.Len() == 0 {
		return placeholderSlug
	}
	return b.String()
}

// slugger hands out unique ids for a single render pass.
type slugger struct {
	counts map[string]int
	used   map[string]bool
}

func newSlugger() *slugger {
	return &slugger{
		counts: make(map[string]int),
		used:   make(map[string]bool),
	}
}

// reserve marks id as taken without counting it as an occurrence of a heading.
func (s *slugger) reserve(id string) {
	s.used[id] = true
}

// unique returns the slug for text, suffixed with -2, -3, ... when it was already handed out.
func (s *slugger) unique(text string) string {
	base := Slugify(text)
	if !s.used[base] {
		s.used[base] = true
		s.counts[base] = 1
		return base
	}

	n := max(s.counts[base], 1)
	for {
		n++
		candidate := base + "-" + strconv.Itoa(n)
		if !s.used[candidate] {
			s.counts[base] = n
			s.used[candidate] = true
			return candidate
		}
	}
}
