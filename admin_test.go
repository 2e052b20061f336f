package graphpress

import (
	"strings"
	"testing"
	"time"
)

const brokenSnippetContent = "# Posts\n\n```graphql\nquery { posts { nodes { title }\n```\n"
const cleanSnippetContent = "# Posts\n\n```graphql\nquery { posts { nodes { title } } }\n```\n"

func TestLintGateEnforceRejects(t *testing.T) {
	reject, msg := lintGate(brokenSnippetContent, LintEnforce)
	if !reject {
		t.Fatal("enforce mode should reject content with snippet issues")
	}
	if !strings.HasPrefix(msg, "Save rejected: ") {
		t.Errorf("msg = %q, want rejection reason", msg)
	}
	if !strings.Contains(msg, "graphql") {
		t.Errorf("msg should name the offending language, got %q", msg)
	}
}

func TestLintGateWarnFlagsButAllowsSave(t *testing.T) {
	reject, msg := lintGate(brokenSnippetContent, LintWarn)
	if reject {
		t.Fatal("warn mode should not reject the save")
	}
	if msg == "" {
		t.Fatal("warn mode should surface the issues in the saved message")
	}
	if !strings.Contains(msg, "issue") {
		t.Errorf("msg = %q, want issue summary", msg)
	}

	// The article still persists and stays readable.
	s := setupTestStore(t)
	cache := NewArticleCache(s, time.Minute)
	article := Article{
		Slug:      "broken-snippet",
		Title:     "Broken Snippet",
		Date:      "2025-03-09",
		Content:   brokenSnippetContent,
		Published: true,
	}
	if err := s.SaveArticle(article); err != nil {
		t.Fatalf("SaveArticle failed: %v", err)
	}
	got, err := cache.GetArticle("broken-snippet")
	if err != nil {
		t.Fatalf("GetArticle failed: %v", err)
	}
	if got.Content != brokenSnippetContent {
		t.Errorf("content round trip mismatch: %q", got.Content)
	}
}

func TestLintGateOffSkipsCheck(t *testing.T) {
	reject, msg := lintGate(brokenSnippetContent, LintOff)
	if reject {
		t.Error("off mode should never reject")
	}
	if msg != "" {
		t.Errorf("off mode should not produce a message, got %q", msg)
	}
}

func TestLintGateCleanContentPassesAllModes(t *testing.T) {
	for _, mode := range []LintMode{LintOff, LintWarn, LintEnforce} {
		reject, msg := lintGate(cleanSnippetContent, mode)
		if reject || msg != "" {
			t.Errorf("mode %q: reject=%v msg=%q, want clean pass", mode, reject, msg)
		}
	}
}
