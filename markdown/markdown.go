// Package markdown provides a Markdown-to-HTML renderer as a templ component.
// Headings get slugified id anchors so documentation sections can be
// deep-linked, and fenced code blocks carry a language badge plus the
// code-block class that snippets.js hooks its copy buttons onto.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`_([^_]+)_`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reLink             = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reOrderedList      = regexp.MustCompile(`^(\d+)\.\s`)
	// ![alt](url){style} or ![alt](url){style|width|height}
	reImg = regexp.MustCompile(`\!\[(.*?)\]\((.*?)\)\{([^|}]*?)(?:\|(\d+)\|(\d+))?\}`)
)

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderMarkdown(&buf, content)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// renderer holds the open-element state while walking the document line by line.
type renderer struct {
	buf        *bytes.Buffer
	imageCount int

	inList          bool
	inOrderedList   bool
	inPara          bool
	inQuote         bool
	inCode          bool
	codeLang        bool // current code block has a language badge
	inTable         bool
	tableHeaderDone bool
}

// RenderMarkdown writes the HTML representation of md to buf.
func RenderMarkdown(buf *bytes.Buffer, md string) {
	r := &renderer{buf: buf}
	for _, raw := range strings.Split(md, "\n") {
		r.line(strings.TrimRight(raw, "\r"))
	}
	r.closeBlocks()
	r.closeCode()
}

func (r *renderer) closeCode() {
	if r.inCode {
		r.buf.WriteString("</code></pre>")
		if r.codeLang {
			r.buf.WriteString("</div>")
			r.codeLang = false
		}
		r.inCode = false
		r.inPara = false
	}
}

func (r *renderer) closePara() {
	if r.inPara {
		r.buf.WriteString("</p>")
		r.inPara = false
	}
}

func (r *renderer) closeQuote() {
	if r.inQuote {
		r.buf.WriteString("</blockquote>")
		r.inQuote = false
	}
}

func (r *renderer) closeList() {
	if r.inList {
		r.buf.WriteString("</ul>")
		r.inList = false
	}
}

func (r *renderer) closeOrderedList() {
	if r.inOrderedList {
		r.buf.WriteString("</ol>")
		r.inOrderedList = false
	}
}

func (r *renderer) closeTable() {
	if r.inTable {
		if r.tableHeaderDone {
			r.buf.WriteString("</tbody>")
		}
		r.buf.WriteString("</table>")
		r.inTable = false
		r.tableHeaderDone = false
	}
}

// closeBlocks closes every open element except a code block: fenced code
// stays open across blank lines until its closing fence.
func (r *renderer) closeBlocks() {
	r.closePara()
	r.closeList()
	r.closeOrderedList()
	r.closeQuote()
	r.closeTable()
}

func (r *renderer) line(line string) {
	if strings.HasPrefix(line, "```") {
		if r.inCode {
			r.closeCode()
		} else {
			r.closeBlocks()
			lang := strings.TrimSpace(line[3:])
			if idx := strings.IndexAny(lang, " \t"); idx >= 0 {
				lang = lang[:idx]
			}
			if lang != "" {
				r.codeLang = true
				escapedLang := html.EscapeString(lang)
				r.buf.WriteString("<div class=\"code-block-wrapper\"><span class=\"code-lang code-lang-" + escapedLang + "\">" + escapedLang + "</span>")
				r.buf.WriteString("<pre class=\"code-block\"><code class=\"language-" + escapedLang + "\">")
			} else {
				r.buf.WriteString("<pre class=\"code-block\"><code>")
			}
			r.inCode = true
			r.inPara = true
		}
		return
	}

	if r.inCode {
		r.buf.WriteString(html.EscapeString(line))
		r.buf.WriteString("\n")
		return
	}

	if strings.TrimSpace(line) == "" {
		r.closeBlocks()
		return
	}

	switch {
	case strings.HasPrefix(line, "---"):
		r.closeBlocks()
		r.buf.WriteString("<hr/>")
	case strings.HasPrefix(line, "# "):
		r.heading(1, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "## "):
		r.heading(2, strings.TrimSpace(line[3:]))
	case strings.HasPrefix(line, "### "):
		r.heading(3, strings.TrimSpace(line[4:]))
	case strings.HasPrefix(line, "|"):
		r.tableRow(line)
	case strings.HasPrefix(line, "- "):
		if !r.inList {
			r.closePara()
			r.closeOrderedList()
			r.closeQuote()
			r.closeTable()
			r.buf.WriteString("<ul>")
			r.inList = true
		}
		r.buf.WriteString("<li>")
		r.buf.WriteString(r.inline(strings.TrimSpace(line[2:])))
		r.buf.WriteString("</li>")
	case reOrderedList.MatchString(line):
		if !r.inOrderedList {
			r.closePara()
			r.closeList()
			r.closeQuote()
			r.closeTable()
			r.buf.WriteString("<ol>")
			r.inOrderedList = true
		}
		content := reOrderedList.ReplaceAllString(line, "")
		r.buf.WriteString("<li>")
		r.buf.WriteString(r.inline(strings.TrimSpace(content)))
		r.buf.WriteString("</li>")
	case strings.HasPrefix(line, "> "):
		if !r.inQuote {
			r.closePara()
			r.closeList()
			r.closeOrderedList()
			r.closeTable()
			r.buf.WriteString("<blockquote>")
			r.inQuote = true
		}
		r.buf.WriteString(r.inline(strings.TrimSpace(line[2:])))
	default:
		if !r.inPara {
			r.closeList()
			r.closeOrderedList()
			r.closeQuote()
			r.closeTable()
			r.buf.WriteString("<p>")
			r.inPara = true
		} else {
			r.buf.WriteString(" ")
		}
		r.buf.WriteString(r.inline(strings.TrimSpace(line)) + "\n")
	}
}

func (r *renderer) heading(level int, text string) {
	r.closeBlocks()
	tag := "h" + strconv.Itoa(level)
	anchor := HeadingID(text)
	if anchor != "" {
		r.buf.WriteString("<" + tag + " id=\"" + anchor + "\">")
	} else {
		r.buf.WriteString("<" + tag + ">")
	}
	r.buf.WriteString(r.inline(text))
	r.buf.WriteString("</" + tag + ">")
}

func (r *renderer) tableRow(line string) {
	if !r.inTable {
		r.closePara()
		r.closeList()
		r.closeOrderedList()
		r.closeQuote()
		r.buf.WriteString("<table>")
		r.inTable = true
		// First row is the header
		r.buf.WriteString("<thead><tr>")
		for _, cell := range parseTableCells(line) {
			r.buf.WriteString("<th>")
			r.buf.WriteString(r.inline(cell))
			r.buf.WriteString("</th>")
		}
		r.buf.WriteString("</tr></thead>")
		return
	}
	if isTableSeparator(line) {
		// Skip separator line like |---|---|
		if !r.tableHeaderDone {
			r.buf.WriteString("<tbody>")
			r.tableHeaderDone = true
		}
		return
	}
	if !r.tableHeaderDone {
		r.buf.WriteString("<tbody>")
		r.tableHeaderDone = true
	}
	r.buf.WriteString("<tr>")
	for _, cell := range parseTableCells(line) {
		r.buf.WriteString("<td>")
		r.buf.WriteString(r.inline(cell))
		r.buf.WriteString("</td>")
	}
	r.buf.WriteString("</tr>")
}

func (r *renderer) inline(s string) string {
	return FormatInline(s, &r.imageCount)
}

// HeadingID converts heading text to a URL-safe anchor id.
func HeadingID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func parseTableCells(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isTableSeparator(line string) bool {
	line = strings.TrimSpace(line)
	line = strings.Trim(line, "|")
	for _, cell := range strings.Split(line, "|") {
		cell = strings.TrimSpace(cell)
		cleaned := strings.ReplaceAll(strings.ReplaceAll(cell, "-", ""), ":", "")
		if cleaned != "" {
			return false
		}
	}
	return true
}

// ApplyOutsideTags applies fn only to text segments outside HTML tags,
// so that formatting regexes never touch URLs inside href attributes, etc.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// FormatInline applies inline formatting (bold, italic, links, images) to s.
func FormatInline(s string, imageCount *int) string {
	escaped := html.EscapeString(s)
	// ![alt](url){style} or ![alt](url){style|width|height}
	escaped = reImg.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImg.FindStringSubmatch(m)
		if len(match) < 4 {
			return m
		}
		src := SafeURL(match[2])
		if src == "" {
			return match[1]
		}

		alt := match[1]
		style := match[3]
		width := "1024"
		height := "768"
		if len(match) >= 6 && match[4] != "" && match[5] != "" {
			width = match[4]
			height = match[5]
		}

		*imageCount++
		var loadAttr string
		if *imageCount == 1 {
			loadAttr = `fetchpriority="high"`
		} else {
			loadAttr = `loading="eager"`
		}

		return `<img ` + loadAttr + ` width="` + width + `" height="` + height + `" alt="` + alt + `" src="` + src + `" style="` + style + `" decoding="async"/>`
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		if len(match) < 3 {
			return m
		}
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := `class="underline decoration-2 underline-offset-4"`
		if len(match) >= 4 && match[3] == "^" {
			attrs += ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `" ` + attrs + `>` + match[1] + `</a>`
	})
	// Inline code: extract and replace with placeholders so bold/italic
	// regex does not format content inside backticks.
	var inlineCodeBlocks []string
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reInlineCode.FindStringSubmatch(m)
		placeholder := "\x00IC" + strconv.Itoa(len(inlineCodeBlocks)) + "\x00"
		inlineCodeBlocks = append(inlineCodeBlocks, "<code>"+match[1]+"</code>")
		return placeholder
	})
	// Apply bold/italic only outside HTML tags so URLs in href are not corrupted
	escaped = ApplyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicUnderscore.ReplaceAllString(seg, "<em>$1</em>")
		return seg
	})
	// Restore inline code blocks
	for i, code := range inlineCodeBlocks {
		escaped = strings.Replace(escaped, "\x00IC"+strconv.Itoa(i)+"\x00", code, 1)
	}
	return escaped
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
