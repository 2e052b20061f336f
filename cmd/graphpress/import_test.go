package main

import "testing"

func TestSplitFrontMatter(t *testing.T) {
	raw := "---\ntitle: Querying Posts\ndate: 2025-03-09\n---\n# Heading\n\nBody text.\n"
	body, lines := splitFrontMatter(raw)
	if body != "# Heading\n\nBody text.\n" {
		t.Errorf("body = %q", body)
	}
	if lines != 4 {
		t.Errorf("lines = %d, want 4", lines)
	}
}

func TestSplitFrontMatterAbsent(t *testing.T) {
	raw := "# Heading\n\nNo front matter here.\n"
	body, lines := splitFrontMatter(raw)
	if body != raw {
		t.Errorf("body = %q", body)
	}
	if lines != 0 {
		t.Errorf("lines = %d, want 0", lines)
	}
}

func TestSplitFrontMatterUnclosed(t *testing.T) {
	raw := "---\ntitle: Broken\nstill not closed\n"
	body, lines := splitFrontMatter(raw)
	if body != raw {
		t.Errorf("unclosed front matter should be kept as body, got %q", body)
	}
	if lines != 0 {
		t.Errorf("lines = %d, want 0", lines)
	}
}

func TestParseArticleFile(t *testing.T) {
	raw := `---
title: Querying Posts with WPGraphQL
date: 2025-03-09
tags:
  - graphql
  - wordpress
category: tutorials
summary: Fetch posts with a single query.
published: true
meta:
  reading_time: 8 min
---
# Querying Posts

` + "```graphql\nquery { posts { nodes { title } } }\n```\n"

	article, offset, err := parseArticleFile("content/querying-posts.md", raw)
	if err != nil {
		t.Fatalf("parseArticleFile: %v", err)
	}
	if article.Slug != "querying-posts" {
		t.Errorf("Slug = %q", article.Slug)
	}
	if article.Title != "Querying Posts with WPGraphQL" {
		t.Errorf("Title = %q", article.Title)
	}
	if article.Category != "tutorials" {
		t.Errorf("Category = %q", article.Category)
	}
	if len(article.Tags) != 2 || article.Tags[0] != "graphql" {
		t.Errorf("Tags = %v", article.Tags)
	}
	if article.Meta["reading_time"] != "8 min" {
		t.Errorf("Meta = %v", article.Meta)
	}
	if !article.Published {
		t.Error("Published should be true")
	}
	if offset != 12 {
		t.Errorf("offset = %d, want 12", offset)
	}
}

func TestParseArticleFileNoFrontMatter(t *testing.T) {
	article, offset, err := parseArticleFile("content/plain-notes.md", "Just markdown.\n")
	if err != nil {
		t.Fatalf("parseArticleFile: %v", err)
	}
	if article.Slug != "plain-notes" {
		t.Errorf("Slug = %q", article.Slug)
	}
	if article.Title != "plain-notes" {
		t.Errorf("Title should fall back to filename, got %q", article.Title)
	}
	if offset != 0 {
		t.Errorf("offset = %d, want 0", offset)
	}
	if article.Published {
		t.Error("Published should default to false")
	}
}
