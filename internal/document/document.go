// Package document loads markdown files from disk and derives the metadata
// the viewer shows next to the rendered text: title and file info.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erkantaylan/markview/internal/frontmatter"
	"github.com/erkantaylan/markview/internal/markdown"
)

// FallbackTitle is used when nothing in the document or its name gives a title.
const FallbackTitle = "Markdown Viewer"

const wordsPerMinute = 200

// ErrUnsupported is returned for files whose extension the viewer does not open.
var ErrUnsupported = errors.New("unsupported file type")

// Info describes a loaded file for the file-info panel.
type Info struct {
	Path           string    `json:"path"`
	Name           string    `json:"name"`
	Dir            string    `json:"dir"`
	Size           int64     `json:"size"`
	ModTime        time.Time `json:"mod_time"`
	Lines          int       `json:"lines"`
	Words          int       `json:"words"`
	Characters     int       `json:"characters"`
	ReadingMinutes int       `json:"reading_minutes"`
}

// Document is a markdown file read from disk.
type Document struct {
	Path    string `json:"path"`
	Content string `json:"-"`
	Title   string `json:"title"`
	Info    Info   `json:"info"`
}

// Load reads a supported file and derives its title and info.
func Load(path string) (*Document, error) {
	if !markdown.IsSupportedFile(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%s is a directory", absPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content := string(data)
	info := Stats(content)
	info.Path = absPath
	info.Name = filepath.Base(absPath)
	info.Dir = filepath.Dir(absPath)
	info.Size = stat.Size()
	info.ModTime = stat.ModTime()

	return &Document{
		Path:    absPath,
		Content: content,
		Title:   ResolveTitle(content, absPath),
		Info:    info,
	}, nil
}

// Stats counts lines, words and characters of text. Path fields are left empty.
func Stats(text string) Info {
	var info Info
	if text == "" {
		return info
	}

	info.Lines = strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		info.Lines++
	}
	info.Words = len(strings.Fields(text))
	info.Characters = utf8.RuneCountInString(text)
	if info.Words > 0 {
		info.ReadingMinutes = max(1, (info.Words+wordsPerMinute-1)/wordsPerMinute)
	}
	return info
}

// ResolveTitle picks a display title: the front matter `title`, then a
// leading `# ` heading, then the file name without extension, then
// FallbackTitle. Front matter without a title and malformed front matter
// both fall through to the next rule.
func ResolveTitle(source, filename string) string {
	body := []byte(source)
	if m, rest, ok := frontmatter.Split(body); ok {
		if t := m.Title(); t != "" {
			return t
		}
		body = rest
	}

	if t := leadingHeading(string(body)); t != "" {
		return t
	}

	if filename != "" {
		base := filepath.Base(filename)
		if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" && name != "." && name != string(filepath.Separator) {
			return name
		}
	}

	return FallbackTitle
}

// leadingHeading returns the text of a `# ` heading when it is the first
// non-blank line of text.
func leadingHeading(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "# ") {
			return ""
		}
		title := strings.TrimSpace(line[2:])
		// closing sequence: "# Title ##"
		if trimmed := strings.TrimRight(title, "#"); trimmed != title && (trimmed == "" || strings.HasSuffix(trimmed, " ")) {
			title = strings.TrimSpace(trimmed)
		}
		return title
	}
	return ""
}
