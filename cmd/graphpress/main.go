package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "lint":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: graphpress lint <file-or-dir>...")
			os.Exit(1)
		}
		if err := runLint(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "import":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: graphpress import <content-dir> <database>")
			os.Exit(1)
		}
		if err := runImport(os.Args[2], os.Args[3]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("graphpress %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`graphpress - A publishing engine for API documentation, built with Go, Echo, and templ

Usage:
  graphpress <command> [arguments]

Commands:
  lint <path>...            Check fenced GraphQL and JSON snippets in markdown files
  import <dir> <database>   Import markdown files with front matter into an article database
  version                   Print the graphpress version
  help                      Show this help message

Examples:
  graphpress lint docs/
  graphpress lint intro-to-graphql.md
  graphpress import content/ data/articles.db`)
}
