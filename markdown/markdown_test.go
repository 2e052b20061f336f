package markdown

import (
	"bytes"
	"strings"
	"testing"
)

func render(input string) string {
	var buf bytes.Buffer
	RenderMarkdown(&buf, input)
	return buf.String()
}

func TestFormatInlineBold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"text **bold** more", "text <strong>bold</strong> more"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input, new(int))
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineItalic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input, new(int))
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineCodeProtectedFromEmphasis(t *testing.T) {
	got := FormatInline("run `a_b_c` now", new(int))
	if !strings.Contains(got, "<code>a_b_c</code>") {
		t.Errorf("inline code was reformatted: %q", got)
	}
}

func TestRenderMarkdownHeadingAnchors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Querying Posts", `<h1 id="querying-posts">Querying Posts</h1>`},
		{"## Meta Fields & Keys", `<h2 id="meta-fields-keys">Meta Fields &amp; Keys</h2>`},
		{"### Users", `<h3 id="users">Users</h3>`},
	}
	for _, tt := range tests {
		got := render(tt.input)
		if got != tt.expected {
			t.Errorf("render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestHeadingID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Querying Posts", "querying-posts"},
		{"  Comments & Replies!  ", "comments-replies"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := HeadingID(tt.input); got != tt.expected {
			t.Errorf("HeadingID(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderMarkdownCodeBlockWithLanguage(t *testing.T) {
	got := render("```graphql\nquery { posts { nodes { id } } }\n```")
	if !strings.Contains(got, `class="language-graphql"`) {
		t.Errorf("code block should have language-graphql class: %q", got)
	}
	if !strings.Contains(got, `<span class="code-lang code-lang-graphql">graphql</span>`) {
		t.Errorf("code block should have language badge: %q", got)
	}
	if !strings.Contains(got, `<pre class="code-block">`) {
		t.Errorf("code block should carry the copy-button hook class: %q", got)
	}
	if !strings.Contains(got, "query { posts { nodes { id } } }") {
		t.Errorf("code block missing content: %q", got)
	}
}

func TestRenderMarkdownCodeBlockLanguageAttributesStripped(t *testing.T) {
	got := render("```graphql title=example\n{ viewer }\n```")
	if !strings.Contains(got, `code-lang-graphql`) {
		t.Errorf("language badge should use the first word only: %q", got)
	}
}

func TestRenderMarkdownCodeBlockWithoutLanguage(t *testing.T) {
	got := render("```\nplain code\n```")
	if strings.Contains(got, "code-lang") {
		t.Errorf("code block without language should not have badge: %q", got)
	}
	if strings.Contains(got, "code-block-wrapper") {
		t.Errorf("code block without language should not have wrapper: %q", got)
	}
}

func TestRenderMarkdownCodeBlockEscapesHTML(t *testing.T) {
	got := render("```\n<script>alert(1)</script>\n```")
	if strings.Contains(got, "<script>") {
		t.Errorf("code block content not escaped: %q", got)
	}
}

func TestRenderMarkdownCodeBlockSpansBlankLines(t *testing.T) {
	got := render("```graphql\nquery {\n\n  viewer\n}\n```")
	if strings.Count(got, "<pre") != 1 {
		t.Errorf("blank line split the code block: %q", got)
	}
}

func TestRenderMarkdownLists(t *testing.T) {
	got := render("- one\n- two\n\n1. first\n2. second")
	if !strings.Contains(got, "<ul><li>one</li><li>two</li></ul>") {
		t.Errorf("unordered list wrong: %q", got)
	}
	if !strings.Contains(got, "<ol><li>first</li><li>second</li></ol>") {
		t.Errorf("ordered list wrong: %q", got)
	}
}

func TestRenderMarkdownTable(t *testing.T) {
	got := render("| Field | Type |\n|---|---|\n| id | ID |")
	if !strings.Contains(got, "<thead><tr><th>Field</th><th>Type</th></tr></thead>") {
		t.Errorf("table header wrong: %q", got)
	}
	if !strings.Contains(got, "<tbody><tr><td>id</td><td>ID</td></tr>") {
		t.Errorf("table body wrong: %q", got)
	}
}

func TestRenderMarkdownBlockquoteAndRule(t *testing.T) {
	got := render("> quoted\n\n---")
	if !strings.Contains(got, "<blockquote>quoted</blockquote>") {
		t.Errorf("blockquote wrong: %q", got)
	}
	if !strings.Contains(got, "<hr/>") {
		t.Errorf("rule wrong: %q", got)
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/docs", "https://example.com/docs"},
		{"/articles/intro/", "/articles/intro/"},
		{"#meta-fields", "#meta-fields"},
		{"javascript:alert(1)", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineLink(t *testing.T) {
	got := FormatInline("[docs](https://example.com)^", new(int))
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("link href missing: %q", got)
	}
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("caret link should open in new tab: %q", got)
	}
}
