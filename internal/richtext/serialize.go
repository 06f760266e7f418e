// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package richtext

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Serialize renders the document to its canonical markup string.
func Serialize(doc Document) string {
	var b strings.Builder
	for _, blk := range doc.Blocks {
		writeBlock(&b, blk)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, blk Block) {
	switch n := blk.(type) {
	case *Paragraph:
		writeParagraph(b, n)
	case *Heading:
		tag := "h" + strconv.Itoa(clampLevel(n.Level))
		b.WriteString("<" + tag + alignAttr(n.Align) + ">")
		writeInlines(b, n.Content)
		b.WriteString("</" + tag + ">")
	case *List:
		tag := "ul"
		if n.Ordered {
			tag = "ol"
		}
		b.WriteString("<" + tag + ">")
		for _, item := range n.Items {
			b.WriteString("<li><p>")
			writeInlines(b, item.Content)
			b.WriteString("</p></li>")
		}
		b.WriteString("</" + tag + ">")
	case *Blockquote:
		b.WriteString("<blockquote>")
		for i := range n.Paragraphs {
			writeParagraph(b, &n.Paragraphs[i])
		}
		b.WriteString("</blockquote>")
	case *Image:
		writeImage(b, n.Src, n.Alt, n.Title, n.Width)
	case *Shape:
		writeImage(b, n.Kind.DataURI(), string(n.Kind), "", n.Width)
	default:
		panic(fmt.Sprintf("richtext: unhandled block %T", blk))
	}
}

func writeParagraph(b *strings.Builder, p *Paragraph) {
	b.WriteString("<p" + alignAttr(p.Align) + ">")
	writeInlines(b, p.Content)
	b.WriteString("</p>")
}

func writeImage(b *strings.Builder, src, alt, title string, width int) {
	w := strconv.Itoa(clampWidth(width))
	b.WriteString(`<img src="` + html.EscapeString(src) + `"`)
	if alt != "" {
		b.WriteString(` alt="` + html.EscapeString(alt) + `"`)
	}
	if title != "" {
		b.WriteString(` title="` + html.EscapeString(title) + `"`)
	}
	b.WriteString(` width="` + w + `" style="width: ` + w + `%">`)
}

func writeInlines(b *strings.Builder, content []Inline) {
	for _, in := range content {
		switch n := in.(type) {
		case Text:
			writeText(b, n)
		case Link:
			b.WriteString(`<a href="` + html.EscapeString(n.Href) + `"`)
			if n.NewTab {
				b.WriteString(` target="_blank" rel="noopener noreferrer"`)
			}
			b.WriteString(">")
			for _, t := range n.Content {
				writeText(b, t)
			}
			b.WriteString("</a>")
		case HardBreak:
			b.WriteString("<br>")
		default:
			panic(fmt.Sprintf("richtext: unhandled inline %T", in))
		}
	}
}

// writeText emits a run wrapped in its marks, outermost first:
// span (color, font) > mark > strong > em > u > s > code.
func writeText(b *strings.Builder, t Text) {
	m := t.Marks
	var closers []string

	if m.Color != "" || m.FontFamily != "" {
		var style []string
		if m.Color != "" {
			style = append(style, "color: "+m.Color)
		}
		if m.FontFamily != "" {
			style = append(style, "font-family: "+m.FontFamily)
		}
		b.WriteString(`<span style="` + html.EscapeString(strings.Join(style, "; ")) + `">`)
		closers = append(closers, "</span>")
	}
	if m.Highlight != "" {
		if m.Highlight == DefaultHighlight {
			b.WriteString("<mark>")
		} else {
			c := html.EscapeString(m.Highlight)
			b.WriteString(`<mark data-color="` + c + `" style="background-color: ` + c + `; color: inherit">`)
		}
		closers = append(closers, "</mark>")
	}
	for _, tag := range []struct {
		on   bool
		name string
	}{
		{m.Bold, "strong"},
		{m.Italic, "em"},
		{m.Underline, "u"},
		{m.Strike, "s"},
		{m.Code, "code"},
	} {
		if tag.on {
			b.WriteString("<" + tag.name + ">")
			closers = append(closers, "</"+tag.name+">")
		}
	}

	b.WriteString(html.EscapeString(t.Value))

	for i := len(closers) - 1; i >= 0; i-- {
		b.WriteString(closers[i])
	}
}

func alignAttr(a Align) string {
	if a == AlignNone {
		return ""
	}
	return ` style="text-align: ` + string(a) + `"`
}

func clampLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 3:
		return 3
	default:
		return level
	}
}
