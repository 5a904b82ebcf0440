// Package web embeds the Historia page templates and stylesheet.
package web

import "embed"

// TemplatesFS holds layouts, partials and pages under templates/.
//
//go:embed all:templates
var TemplatesFS embed.FS

// StaticFS holds the assets served under /static/.
//
//go:embed all:static
var StaticFS embed.FS
