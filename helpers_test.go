package graphpress

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Querying Posts with WPGraphQL", "querying-posts-with-wpgraphql"},
		{"  Hello,  World!  ", "hello-world"},
		{"GraphQL 101", "graphql-101"},
		{"---", ""},
		{"already-a-slug", "already-a-slug"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	got := BuildURL("https://example.com", "articles", "intro")
	if got != "https://example.com/articles/intro/" {
		t.Errorf("BuildURL = %q", got)
	}
	if got := BuildURL("https://example.com"); got != "https://example.com" {
		t.Errorf("BuildURL with no segments = %q", got)
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{"graphql", "", "  ", " api "})
	if len(got) != 2 || got[0] != "graphql" || got[1] != "api" {
		t.Errorf("FilterEmpty = %v", got)
	}
}

func TestFilterRelatedArticles(t *testing.T) {
	current := Article{Slug: "intro", Tags: []string{"graphql"}, Category: "tutorials"}
	articles := []Article{
		{Slug: "intro", Tags: []string{"graphql"}, Category: "tutorials"},
		{Slug: "same-category", Tags: []string{"rest"}, Category: "Tutorials"},
		{Slug: "shared-tag", Tags: []string{"GraphQL", "mutations"}, Category: "reference"},
		{Slug: "unrelated", Tags: []string{"rest"}, Category: "news"},
	}

	related := FilterRelatedArticles(current, articles)
	if len(related) != 2 {
		t.Fatalf("got %d related, want 2: %v", len(related), related)
	}
	if related[0].Slug != "same-category" || related[1].Slug != "shared-tag" {
		t.Errorf("related = [%s %s]", related[0].Slug, related[1].Slug)
	}
}

func TestParseMetaLines(t *testing.T) {
	meta := ParseMetaLines("endpoint: /graphql\r\nreading_time: 8 min\nnot a pair\n\nendpoint: /wp/graphql\n")
	if len(meta) != 2 {
		t.Fatalf("got %d keys, want 2: %v", len(meta), meta)
	}
	if meta["endpoint"] != "/wp/graphql" {
		t.Errorf("later duplicate should win, got %q", meta["endpoint"])
	}
	if meta["reading_time"] != "8 min" {
		t.Errorf("reading_time = %q", meta["reading_time"])
	}

	if got := ParseMetaLines(""); got != nil {
		t.Errorf("empty input should return nil, got %v", got)
	}
}

func TestFormatMetaLines(t *testing.T) {
	got := FormatMetaLines(map[string]string{"b": "2", "a": "1"})
	if got != "a: 1\nb: 2\n" {
		t.Errorf("FormatMetaLines = %q", got)
	}
	if got := FormatMetaLines(nil); got != "" {
		t.Errorf("FormatMetaLines(nil) = %q", got)
	}
}

func TestMetaLinesRoundTrip(t *testing.T) {
	orig := map[string]string{"endpoint": "/graphql", "reading_time": "8 min"}
	got := ParseMetaLines(FormatMetaLines(orig))
	if len(got) != len(orig) {
		t.Fatalf("round trip lost keys: %v", got)
	}
	for k, v := range orig {
		if got[k] != v {
			t.Errorf("round trip %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestArticleJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "Docs", URL: "https://example.com", Author: "Jane"}
	article := Article{
		Slug:     "intro",
		Title:    "Intro to GraphQL",
		Summary:  "Queries explained.",
		Date:     "2025-03-09",
		Tags:     []string{"graphql", "api"},
		Category: "tutorials",
	}

	got := ArticleJsonLD(article, cfg)
	for _, want := range []string{
		`"@type":"TechArticle"`,
		`"headline":"Intro to GraphQL"`,
		`"articleSection":"tutorials"`,
		`"keywords":"graphql, api"`,
		`"url":"https://example.com/articles/intro/"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON-LD missing %s in %s", want, got)
		}
	}
}

func TestWebsiteJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "Docs", URL: "https://example.com", Description: "API docs"}
	got := WebsiteJsonLD(cfg)
	for _, want := range []string{`"@type":"WebSite"`, `"name":"Docs"`, `"description":"API docs"`} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON-LD missing %s in %s", want, got)
		}
	}
}
