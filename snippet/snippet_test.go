package snippet

import (
	"strings"
	"testing"
)

func TestExtractFindsFencedBlocks(t *testing.T) {
	md := "intro\n\n```graphql\nquery { posts { nodes { id } } }\n```\n\ntext\n\n```json\n{\"a\": 1}\n```\n"
	blocks := Extract(md)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Lang != "graphql" {
		t.Errorf("Lang = %q, want graphql", blocks[0].Lang)
	}
	if blocks[0].Line != 3 {
		t.Errorf("Line = %d, want 3", blocks[0].Line)
	}
	if !strings.Contains(blocks[0].Body, "query { posts") {
		t.Errorf("Body = %q, missing query text", blocks[0].Body)
	}
	if blocks[1].Lang != "json" {
		t.Errorf("Lang = %q, want json", blocks[1].Lang)
	}
}

func TestExtractLanguageTagAttributes(t *testing.T) {
	md := "```graphql title=example\nquery { viewer }\n```\n"
	blocks := Extract(md)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Lang != "graphql" {
		t.Errorf("Lang = %q, want graphql", blocks[0].Lang)
	}
}

func TestExtractUnterminatedFence(t *testing.T) {
	md := "text\n\n```graphql\nquery { viewer }\n"
	blocks := Extract(md)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if !blocks[0].Unclosed {
		t.Error("expected Unclosed to be set")
	}

	report := LintBlocks(blocks)
	if report.Clean() {
		t.Error("expected an issue for the unterminated fence")
	}
}

func TestExtractIgnoresInlineBackticks(t *testing.T) {
	md := "use `query` inline\n\nplain paragraph\n"
	if blocks := Extract(md); len(blocks) != 0 {
		t.Fatalf("expected 0 blocks, got %d", len(blocks))
	}
}

func TestExtractCRLFInput(t *testing.T) {
	md := "```graphql\r\nquery { viewer }\r\n```\r\n"
	blocks := Extract(md)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if strings.Contains(blocks[0].Body, "\r") {
		t.Errorf("Body retains carriage returns: %q", blocks[0].Body)
	}
}

func TestLintValidGraphQL(t *testing.T) {
	md := "```graphql\nquery {\n  posts {\n    nodes {\n      id\n      title\n      metaFields { key value }\n    }\n  }\n}\n```\n"
	report := Lint(md)
	if !report.Clean() {
		t.Fatalf("expected clean report, got issues: %v", report.Issues)
	}
	if report.Checked != 1 {
		t.Errorf("Checked = %d, want 1", report.Checked)
	}
}

func TestLintValidGraphQLWithFragmentsAndVariables(t *testing.T) {
	md := "```gql\nquery PostByID($id: ID!) {\n  post(id: $id) {\n    ...postFields\n  }\n}\n\nfragment postFields on Post {\n  id\n  title\n}\n```\n"
	report := Lint(md)
	if !report.Clean() {
		t.Fatalf("expected clean report, got issues: %v", report.Issues)
	}
}

func TestLintInvalidGraphQLReportsDocumentLine(t *testing.T) {
	// Opening brace never closed; the fence opens at document line 3.
	md := "title\n\n```graphql\nquery {\n  posts {\n```\n"
	report := Lint(md)
	if report.Clean() {
		t.Fatal("expected issues for truncated query")
	}
	issue := report.Issues[0]
	if issue.Line <= 3 {
		t.Errorf("issue line %d should be past the opening fence at line 3", issue.Line)
	}
	if issue.Lang != "graphql" {
		t.Errorf("Lang = %q, want graphql", issue.Lang)
	}
}

func TestLintEmptyGraphQLBlock(t *testing.T) {
	report := Lint("```graphql\n```\n")
	if report.Clean() {
		t.Fatal("expected an issue for empty graphql block")
	}
	if got := report.Issues[0].Message; got != "empty graphql block" {
		t.Errorf("Message = %q", got)
	}
}

func TestLintJSON(t *testing.T) {
	valid := Lint("```json\n{\"key\": \"value\", \"n\": 3}\n```\n")
	if !valid.Clean() {
		t.Fatalf("expected clean report, got %v", valid.Issues)
	}

	invalid := Lint("```json\n{\"key\": }\n```\n")
	if invalid.Clean() {
		t.Fatal("expected an issue for malformed json")
	}
	if invalid.Issues[0].Line != 2 {
		t.Errorf("issue line = %d, want 2", invalid.Issues[0].Line)
	}
}

func TestLintSkipsUnknownLanguages(t *testing.T) {
	md := "```bash\nrm -i file\n```\n\n```\nplain block\n```\n"
	report := Lint(md)
	if report.Blocks != 2 {
		t.Errorf("Blocks = %d, want 2", report.Blocks)
	}
	if report.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", report.Skipped)
	}
	if report.Checked != 0 {
		t.Errorf("Checked = %d, want 0", report.Checked)
	}
	if !report.Clean() {
		t.Errorf("unexpected issues: %v", report.Issues)
	}
}

func TestReportSummary(t *testing.T) {
	clean := Lint("```graphql\n{ viewer }\n```\n")
	if got := clean.Summary(); got != "1 snippets checked, no issues" {
		t.Errorf("Summary = %q", got)
	}
	dirty := Lint("```graphql\nquery {\n```\n")
	if !strings.Contains(dirty.Summary(), "issues") {
		t.Errorf("Summary = %q", dirty.Summary())
	}
}
