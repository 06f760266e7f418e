// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package richtext implements the structured rich-text document used as post
// content in rich-text deployments. A Document is a closed set of block and
// inline node types; it serializes to an HTML markup string, which is what
// gets persisted, and parses back from that string for display and editing.
package richtext

// Align is the text alignment of a paragraph or heading.
type Align string

const (
	AlignNone    Align = ""
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

func parseAlign(s string) Align {
	switch a := Align(s); a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return a
	default:
		return AlignNone
	}
}

// Image width bounds, in percent of the content column.
const (
	MinImageWidth     = 25
	MaxImageWidth     = 100
	DefaultImageWidth = 100
)

// DefaultHighlight marks a highlight without an explicit color.
const DefaultHighlight = "default"

// Palette offered by the editor toolbar.
var (
	TextColors = []string{
		"#000000", "#ef4444", "#f97316", "#eab308",
		"#22c55e", "#3b82f6", "#a855f7", "#ec4899",
	}
	FontFamilies = []string{
		"Inter, system-ui, sans-serif",
		"Georgia, serif",
		"Monaco, monospace",
		"Playfair Display, serif",
	}
)

// Document is an ordered sequence of blocks.
type Document struct {
	Blocks []Block
}

// Block is a top-level node: *Paragraph, *Heading, *List, *Blockquote,
// *Image or *Shape. The set is closed.
type Block interface {
	isBlock()
}

// Inline is a node inside a paragraph, heading or list item: Text, Link or
// HardBreak. The set is closed.
type Inline interface {
	isInline()
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Align   Align
	Content []Inline
}

// Heading is a level 1-3 heading.
type Heading struct {
	Level   int
	Align   Align
	Content []Inline
}

// List is an ordered or bulleted list.
type List struct {
	Ordered bool
	Items   []ListItem
}

// ListItem is one entry of a List.
type ListItem struct {
	Content []Inline
}

// Blockquote holds quoted paragraphs.
type Blockquote struct {
	Paragraphs []Paragraph
}

// Image is an embedded, resizable image. Width is a percentage.
type Image struct {
	Src   string
	Alt   string
	Title string
	Width int
}

// Shape is an image whose source is one of the built-in vector shapes.
type Shape struct {
	Kind  ShapeKind
	Width int
}

func (*Paragraph) isBlock()  {}
func (*Heading) isBlock()    {}
func (*List) isBlock()       {}
func (*Blockquote) isBlock() {}
func (*Image) isBlock()      {}
func (*Shape) isBlock()      {}

// Marks are the character-level styles applied to a Text run.
type Marks struct {
	Bold       bool
	Italic     bool
	Underline  bool
	Strike     bool
	Code       bool
	Highlight  string // "" for none, DefaultHighlight, or a CSS color
	Color      string
	FontFamily string
}

// Text is a run of characters sharing the same marks.
type Text struct {
	Value string
	Marks Marks
}

// Link is a hyperlink around styled text runs.
type Link struct {
	Href    string
	NewTab  bool
	Content []Text
}

// HardBreak is a line break inside a block.
type HardBreak struct{}

func (Text) isInline()      {}
func (Link) isInline()      {}
func (HardBreak) isInline() {}

// clampWidth bounds an image width, treating zero as unset.
func clampWidth(w int) int {
	switch {
	case w == 0:
		return DefaultImageWidth
	case w < MinImageWidth:
		return MinImageWidth
	case w > MaxImageWidth:
		return MaxImageWidth
	default:
		return w
	}
}

// appendText adds a run, merging it into the previous run when the marks match.
func appendText(runs []Inline, t Text) []Inline {
	if t.Value == "" {
		return runs
	}
	if n := len(runs); n > 0 {
		if prev, ok := runs[n-1].(Text); ok && prev.Marks == t.Marks {
			runs[n-1] = Text{Value: prev.Value + t.Value, Marks: t.Marks}
			return runs
		}
	}
	return append(runs, t)
}

func appendLinkText(runs []Text, t Text) []Text {
	if t.Value == "" {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].Marks == t.Marks {
		runs[n-1].Value += t.Value
		return runs
	}
	return append(runs, t)
}
