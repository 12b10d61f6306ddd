// Package web carries the embedded UI: page templates and the static
// assets the dashboard script and styles live in.
package web

import "embed"

// TemplatesFS embeds the server-rendered page templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds css/js served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
