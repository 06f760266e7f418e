// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package richtext

import (
	"net/url"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	percentWidth = regexp.MustCompile(`^\d{1,3}%$`)
	blankTarget  = regexp.MustCompile(`^_blank$`)
)

// ingestPolicy allows exactly the markup the editor produces.
var ingestPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "blockquote", "br",
		"strong", "b", "em", "i", "u", "s", "strike", "del", "code", "mark", "span",
	)

	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(blankTarget).OnElements("a")
	p.AllowAttrs("title").Matching(bluemonday.Paragraph).OnElements("a", "img")

	p.AllowImages()
	// bluemonday's own data URI rule rejects SVG, which shapes need.
	p.AllowURLSchemeWithCustomPolicy("data", func(u *url.URL) bool {
		return SafeImageSrc(u.String())
	})

	p.AllowAttrs("data-color").Matching(cssColor).OnElements("mark")
	p.AllowStyles("text-align").MatchingEnum("left", "center", "right", "justify").OnElements("p", "h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowStyles("color").Matching(cssColor).OnElements("span", "mark")
	p.AllowStyles("background-color").Matching(cssColor).OnElements("mark")
	p.AllowStyles("font-family").Matching(cssFont).OnElements("span")
	p.AllowStyles("width").Matching(percentWidth).OnElements("img")
	return p
}()

// Sanitize strips everything from untrusted markup that the editor could
// not have produced: scripts, event handlers, unknown attributes and
// non-http(s) URLs.
func Sanitize(markup string) string {
	return ingestPolicy.Sanitize(markup)
}

// Normalize sanitizes untrusted markup and rewrites it in canonical form.
func Normalize(markup string) (string, error) {
	doc, err := Parse(Sanitize(markup))
	if err != nil {
		return "", err
	}
	return Serialize(doc), nil
}
