package graphpress

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// snippets.js (copy buttons on rendered code blocks + analytics beacon).
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
