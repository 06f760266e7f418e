// Package web embeds the site's static assets, served under /static/.
package web

import "embed"

// StaticFS holds web/static: the stylesheet and the editor script.
//
//go:embed all:static
var StaticFS embed.FS
