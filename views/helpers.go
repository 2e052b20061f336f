// Package views provides helpers for user-written templ templates:
// CSS class builders, date formatting, and snippet language labels.
package views

import (
	"strings"
	"time"
)

// FormatDate renders an ISO date (2006-01-02) as a human-readable date.
// Unparseable input is returned as-is.
func FormatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	base := "inline-flex items-center rounded border border-ink dark:border-white/30 bg-stone-100 dark:bg-neutral-700 px-2.5 py-1 text-[11px] font-semibold uppercase tracking-[0.12em] hover:-translate-y-0.5 hover:shadow-sm transition"
	if active {
		base += " bg-ink dark:bg-white text-white dark:text-ink"
	}
	return base
}

// CategoryClass returns CSS classes for a category link, with active variant.
func CategoryClass(active bool) string {
	base := "inline-flex items-center rounded-full px-3 py-1 text-xs font-medium border border-stone-300 dark:border-neutral-600 hover:bg-stone-100 dark:hover:bg-neutral-700 transition"
	if active {
		base += " bg-ink dark:bg-white text-white dark:text-ink"
	}
	return base
}

// snippetLabels maps fence language tags to display labels for code
// block badges. Unknown tags fall back to the uppercased tag itself.
var snippetLabels = map[string]string{
	"graphql": "GraphQL",
	"gql":     "GraphQL",
	"json":    "JSON",
	"bash":    "Shell",
	"sh":      "Shell",
	"go":      "Go",
	"js":      "JavaScript",
	"php":     "PHP",
}

// SnippetLabel returns the display label for a fence language tag.
func SnippetLabel(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return "Code"
	}
	if label, ok := snippetLabels[lang]; ok {
		return label
	}
	return strings.ToUpper(lang)
}
