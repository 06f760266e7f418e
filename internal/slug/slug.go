// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from post titles.
package slug

import (
	"regexp"
	"strings"
)

// separatorRun matches every run of characters outside [a-z0-9].
var separatorRun = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given string. The input is
// lowercased, each run of non-alphanumeric characters becomes a single
// hyphen, and leading/trailing hyphens are stripped.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(s)
	result = separatorRun.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
