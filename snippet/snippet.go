// Package snippet extracts fenced code blocks from markdown documents and
// syntax-checks the ones it understands. GraphQL blocks are parsed with
// gqlparser; JSON blocks must unmarshal. Snippets are never executed or
// resolved against a schema — this is a documentation lint, not a runtime.
package snippet

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// Block is a fenced code block lifted out of a markdown document.
type Block struct {
	Lang     string // language tag after the opening fence, lowercased
	Body     string // block content without the fences
	Line     int    // 1-based line number of the opening fence
	Unclosed bool   // opening fence never terminated
}

// Issue is a single problem found in a block.
type Issue struct {
	Block   int    // index of the block in extraction order
	Lang    string // language tag of the offending block
	Line    int    // 1-based line in the enclosing document
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d (%s): %s", i.Line, i.Lang, i.Message)
}

// Report aggregates the lint result for one markdown document.
type Report struct {
	Blocks  int // fenced blocks found
	Checked int // blocks with a lintable language
	Skipped int // blocks with no or an unknown language
	Issues  []Issue
}

// Clean reports whether no issues were found.
func (r Report) Clean() bool {
	return len(r.Issues) == 0
}

// Summary renders a short human-readable result line.
func (r Report) Summary() string {
	if r.Clean() {
		return fmt.Sprintf("%d snippets checked, no issues", r.Checked)
	}
	return fmt.Sprintf("%d snippets checked, %d issues", r.Checked, len(r.Issues))
}

// Extract scans md for fenced code blocks. Indented code and inline
// backticks are ignored; only ``` fences at the start of a line open a
// block. An unterminated fence yields a Block with Unclosed set.
func Extract(md string) []Block {
	var blocks []Block
	var cur *Block
	var body []string

	lines := strings.Split(md, "\n")
	for i, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(line, "```") {
			if cur == nil {
				// Language tag may carry extra attributes ("graphql title=x");
				// only the first word identifies the language.
				tag := strings.TrimSpace(line[3:])
				if idx := strings.IndexAny(tag, " \t"); idx >= 0 {
					tag = tag[:idx]
				}
				cur = &Block{Lang: strings.ToLower(tag), Line: i + 1}
				body = body[:0]
			} else {
				cur.Body = strings.Join(body, "\n")
				blocks = append(blocks, *cur)
				cur = nil
			}
			continue
		}
		if cur != nil {
			body = append(body, line)
		}
	}
	if cur != nil {
		cur.Body = strings.Join(body, "\n")
		cur.Unclosed = true
		blocks = append(blocks, *cur)
	}
	return blocks
}

// Lint extracts and checks all fenced blocks in md.
func Lint(md string) Report {
	return LintBlocks(Extract(md))
}

// LintBlocks checks already-extracted blocks.
func LintBlocks(blocks []Block) Report {
	r := Report{Blocks: len(blocks)}
	for i, b := range blocks {
		if b.Unclosed {
			r.Issues = append(r.Issues, Issue{
				Block:   i,
				Lang:    b.Lang,
				Line:    b.Line,
				Message: "unterminated code fence",
			})
		}
		switch b.Lang {
		case "graphql", "gql":
			r.Checked++
			r.Issues = append(r.Issues, checkGraphQL(i, b)...)
		case "json":
			r.Checked++
			if issue, ok := checkJSON(i, b); ok {
				r.Issues = append(r.Issues, issue)
			}
		default:
			r.Skipped++
		}
	}
	sort.SliceStable(r.Issues, func(a, b int) bool { return r.Issues[a].Line < r.Issues[b].Line })
	return r
}

func checkGraphQL(idx int, b Block) []Issue {
	if strings.TrimSpace(b.Body) == "" {
		return []Issue{{Block: idx, Lang: b.Lang, Line: b.Line, Message: "empty graphql block"}}
	}
	_, err := parser.ParseQuery(&ast.Source{Name: fmt.Sprintf("block %d", idx+1), Input: b.Body})
	if err == nil {
		return nil
	}

	var issues []Issue
	add := func(gerr *gqlerror.Error) {
		line := b.Line
		if len(gerr.Locations) > 0 {
			// Parser locations are 1-based within the snippet; the fence
			// line offsets them into the enclosing document.
			line = b.Line + gerr.Locations[0].Line
		}
		issues = append(issues, Issue{Block: idx, Lang: b.Lang, Line: line, Message: gerr.Message})
	}

	var list gqlerror.List
	var gerr *gqlerror.Error
	switch {
	case errors.As(err, &list):
		for _, e := range list {
			add(e)
		}
	case errors.As(err, &gerr):
		add(gerr)
	default:
		issues = append(issues, Issue{Block: idx, Lang: b.Lang, Line: b.Line, Message: err.Error()})
	}
	return issues
}

func checkJSON(idx int, b Block) (Issue, bool) {
	trimmed := strings.TrimSpace(b.Body)
	if trimmed == "" {
		return Issue{Block: idx, Lang: b.Lang, Line: b.Line, Message: "empty json block"}, true
	}
	var v any
	err := json.Unmarshal([]byte(b.Body), &v)
	if err == nil {
		return Issue{}, false
	}
	line := b.Line
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		line = b.Line + lineOfOffset(b.Body, syn.Offset)
	}
	return Issue{Block: idx, Lang: b.Lang, Line: line, Message: err.Error()}, true
}

// lineOfOffset converts a byte offset into a 1-based line number.
func lineOfOffset(s string, offset int64) int {
	if offset > int64(len(s)) {
		offset = int64(len(s))
	}
	return strings.Count(s[:offset], "\n") + 1
}
