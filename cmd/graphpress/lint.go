package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlerend/graphpress/snippet"
)

// runLint checks every markdown file under the given paths and prints
// one line per issue in file:line format. It exits non-zero when any
// snippet fails to parse.
func runLint(paths []string) error {
	files, err := collectMarkdownFiles(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no markdown files found")
	}

	var checked, issues int
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}

		// Skip front matter so its lines do not shift issue positions
		// relative to what the import command stores.
		body, offset := splitFrontMatter(string(data))

		report := snippet.Lint(body)
		checked += report.Checked
		for _, issue := range report.Issues {
			fmt.Printf("%s:%d: (%s) %s\n", file, issue.Line+offset, issue.Lang, issue.Message)
			issues++
		}
	}

	fmt.Printf("%d files, %d snippets checked, %d issues\n", len(files), checked, issues)
	if issues > 0 {
		os.Exit(1)
	}
	return nil
}

// collectMarkdownFiles expands the given paths into a list of markdown
// files, walking directories recursively.
func collectMarkdownFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.HasSuffix(path, ".md") || strings.HasSuffix(path, ".markdown") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
