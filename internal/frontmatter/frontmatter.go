// Package frontmatter reads and patches the metadata block at the top of a
// post. The block is a fixed, narrow format:
//
//	---
//	title: "Hello"
//	date: 2025-01-15
//	---
//
//	Body text.
//
// It is scanned line by line; metadata values are substituted verbatim and
// never escaped. Line breaks in a title are folded to spaces, so such a
// title reads back with spaces in their place.
package frontmatter

import (
	"strings"
	"time"

	"github.com/starford/studio/internal/apperr"
)

const (
	// Delimiter opens and closes the metadata block.
	Delimiter = "---"
	// DefaultTitle is used when neither metadata nor a heading names the post.
	DefaultTitle = "Untitled Post"

	dateLayout = "2006-01-02"
)

// Line is one raw metadata line. Raw keeps the original text including its
// line ending; Key and Value are empty for lines without a colon.
type Line struct {
	Key   string
	Value string
	Raw   string
}

// Document is content split into its metadata block and body.
// Concatenating String() always reproduces the input of Split exactly.
type Document struct {
	HasBlock bool
	Open     string
	Meta     []Line
	Close    string
	Body     string
}

// String reassembles the document.
func (d Document) String() string {
	if !d.HasBlock {
		return d.Body
	}
	var b strings.Builder
	b.WriteString(d.Open)
	for _, l := range d.Meta {
		b.WriteString(l.Raw)
	}
	b.WriteString(d.Close)
	b.WriteString(d.Body)
	return b.String()
}

// Get returns the unquoted value of the first metadata line named key.
func (d Document) Get(key string) (string, bool) {
	for _, l := range d.Meta {
		if l.Key == key {
			return unquote(l.Value), true
		}
	}
	return "", false
}

// Split separates the metadata block from the body. Content that does not
// start with a delimiter line has no block. An opening delimiter without a
// closing one yields the whole content as body together with
// apperr.ErrMalformedContent.
func Split(content string) (Document, error) {
	lines := splitLines(content)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Delimiter {
		return Document{Body: content}, nil
	}

	doc := Document{Open: lines[0]}
	inside := true
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == Delimiter {
			doc.Close = line
			inside = false
			break
		}
		doc.Meta = append(doc.Meta, parseLine(line))
	}
	if inside {
		return Document{Body: content}, apperr.E(apperr.ErrMalformedContent, "split frontmatter", "", nil)
	}

	doc.HasBlock = true
	doc.Body = content[metaEnd(doc):]
	return doc, nil
}

// ExtractTitle returns the frontmatter title, else the first "# " heading of
// the body, else DefaultTitle. A malformed block is treated as plain body.
func ExtractTitle(content string) string {
	body := content
	if doc, err := Split(content); err == nil && doc.HasBlock {
		if title, ok := doc.Get("title"); ok && title != "" {
			return title
		}
		body = doc.Body
	}
	for _, line := range splitLines(body) {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "# ") {
			continue
		}
		if heading := strings.TrimSpace(trimmed[2:]); heading != "" {
			return heading
		}
	}
	return DefaultTitle
}

// Field returns the unquoted value of key from a well-formed block.
func Field(content, key string) (string, bool) {
	doc, err := Split(content)
	if err != nil || !doc.HasBlock {
		return "", false
	}
	return doc.Get(key)
}

// WithTitle sets the title using today's date for a synthesized block.
func WithTitle(content, title string) string {
	return WithTitleAt(content, title, time.Now().UTC())
}

// WithTitleAt replaces the title line of a well-formed block (or inserts one
// as its first line), leaving every other line and the body untouched. When
// there is no well-formed block a new one with title and date is prepended,
// separated from the original content by a blank line. Applying it twice
// with the same title is a no-op.
func WithTitleAt(content, title string, now time.Time) string {
	titleLine := `title: "` + singleLine(title) + `"`

	doc, err := Split(content)
	if err != nil || !doc.HasBlock {
		return Delimiter + "\n" +
			titleLine + "\n" +
			"date: " + now.Format(dateLayout) + "\n" +
			Delimiter + "\n\n" +
			content
	}

	for i, l := range doc.Meta {
		if l.Key == "title" {
			doc.Meta[i] = parseLine(titleLine + lineEnding(l.Raw, doc.Open))
			return doc.String()
		}
	}
	doc.Meta = append([]Line{parseLine(titleLine + lineEnding(doc.Open, doc.Open))}, doc.Meta...)
	return doc.String()
}

func metaEnd(d Document) int {
	n := len(d.Open) + len(d.Close)
	for _, l := range d.Meta {
		n += len(l.Raw)
	}
	return n
}

// splitLines splits s after every "\n", keeping the terminators.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func parseLine(raw string) Line {
	key, value, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return Line{Raw: raw}
	}
	return Line{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value), Raw: raw}
}

// unquote strips one pair of matching double or single quotes.
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// lineEnding returns the terminator of line, falling back to the one used by
// the opening delimiter.
func lineEnding(line, open string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	case strings.HasSuffix(open, "\r\n"):
		return "\r\n"
	default:
		return "\n"
	}
}

// singleLine folds line breaks into spaces; a title is one metadata line.
func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
