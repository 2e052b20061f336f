package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mlerend/graphpress"
	"github.com/mlerend/graphpress/snippet"
)

// frontMatter is the YAML header of an importable markdown file.
type frontMatter struct {
	Title     string            `yaml:"title"`
	Date      string            `yaml:"date"`
	Tags      []string          `yaml:"tags"`
	Category  string            `yaml:"category"`
	Summary   string            `yaml:"summary"`
	Published bool              `yaml:"published"`
	Meta      map[string]string `yaml:"meta"`
}

// runImport walks contentDir for markdown files, parses their front
// matter, lints their snippets, and saves each as an article in the
// database at dbPath. Files with lint issues are reported but still
// imported, matching warn-mode saves in the admin UI.
func runImport(contentDir, dbPath string) error {
	store, err := graphpress.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	var imported, warned int
	err = filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		article, offset, err := parseArticleFile(path, string(data))
		if err != nil {
			return err
		}

		report := snippet.Lint(article.Content)
		for _, issue := range report.Issues {
			fmt.Printf("%s:%d: (%s) %s\n", path, issue.Line+offset, issue.Lang, issue.Message)
		}
		if !report.Clean() {
			warned++
		}

		if err := store.SaveArticle(article); err != nil {
			return fmt.Errorf("save %s: %w", article.Slug, err)
		}
		imported++
		fmt.Printf("imported %s (%s)\n", article.Slug, article.Title)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("%d articles imported, %d with snippet warnings\n", imported, warned)
	return nil
}

// parseArticleFile converts a markdown file with YAML front matter into
// an Article. The slug is derived from the filename. It also returns
// the number of lines the front matter occupies, for issue reporting.
func parseArticleFile(path, raw string) (graphpress.Article, int, error) {
	body, offset := splitFrontMatter(raw)

	var fm frontMatter
	if offset > 0 {
		header := strings.Join(strings.Split(raw, "\n")[1:offset-1], "\n")
		if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
			return graphpress.Article{}, 0, fmt.Errorf("parse front matter in %s: %w", path, err)
		}
	}

	base := strings.TrimSuffix(filepath.Base(path), ".md")
	slug := graphpress.Slugify(base)
	if slug == "" {
		return graphpress.Article{}, 0, fmt.Errorf("cannot derive slug from %s", path)
	}

	title := fm.Title
	if title == "" {
		title = base
	}

	return graphpress.Article{
		Slug:      slug,
		Title:     title,
		Date:      fm.Date,
		Tags:      graphpress.FilterEmpty(fm.Tags),
		Category:  fm.Category,
		Summary:   fm.Summary,
		Content:   body,
		Meta:      fm.Meta,
		Published: fm.Published,
	}, offset, nil
}

// splitFrontMatter strips a leading YAML front matter block delimited
// by "---" lines. It returns the remaining body and the number of
// lines removed, so snippet issue lines can be mapped back to the file.
func splitFrontMatter(raw string) (body string, lines int) {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return normalized, 0
	}
	rest := normalized[4:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return normalized, 0
	}
	after := rest[end+4:]
	// The closing delimiter must end the line.
	if after != "" && !strings.HasPrefix(after, "\n") {
		return normalized, 0
	}
	body = strings.TrimPrefix(after, "\n")
	lines = strings.Count(normalized[:len(normalized)-len(body)], "\n")
	return body, lines
}
