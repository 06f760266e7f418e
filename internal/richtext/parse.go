// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package richtext

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	cssColor   = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|rgba?\([0-9.,\s%]+\)|[a-zA-Z]+)$`)
	cssFont    = regexp.MustCompile(`^[A-Za-z0-9 ,\-]+$`)
	imageTypes = []string{"png", "jpeg", "jpg", "gif", "webp", "svg+xml"}
)

// dropped elements are skipped together with everything inside them.
var dropped = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Iframe: true, atom.Object: true,
	atom.Embed: true, atom.Template: true, atom.Noscript: true, atom.Svg: true,
	atom.Math: true, atom.Head: true, atom.Title: true,
}

var inlineElements = map[atom.Atom]bool{
	atom.A: true, atom.Strong: true, atom.B: true, atom.Em: true, atom.I: true,
	atom.U: true, atom.S: true, atom.Strike: true, atom.Del: true, atom.Code: true,
	atom.Kbd: true, atom.Samp: true, atom.Mark: true, atom.Span: true,
	atom.Sub: true, atom.Sup: true, atom.Small: true, atom.Abbr: true,
}

// Parse reads a markup string into a Document. Unknown elements are
// unwrapped, unsafe URLs and active content are dropped, and adjacent text
// runs with equal marks are merged, so Parse(Serialize(d)) reproduces d for
// any document whose runs are already merged.
func Parse(markup string) (Document, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return Document{}, fmt.Errorf("parse markup: %w", err)
	}

	p := &parser{}
	for _, n := range nodes {
		p.block(n)
	}
	p.flush()
	return Document{Blocks: p.blocks}, nil
}

type parser struct {
	blocks  []Block
	pending []Inline // loose inline content outside any block element
}

func (p *parser) emit(b Block) {
	p.blocks = append(p.blocks, b)
}

// flush turns loose inline content into a paragraph.
func (p *parser) flush() {
	content := trimTrailingSpace(p.pending)
	p.pending = nil
	if hasVisible(content) {
		p.emit(&Paragraph{Content: content})
	}
}

func (p *parser) block(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" && len(p.pending) == 0 {
			return
		}
		p.pending = appendText(p.pending, Text{Value: n.Data})
		return
	case html.ElementNode:
	default:
		return
	}

	if dropped[n.DataAtom] {
		return
	}

	switch n.DataAtom {
	case atom.P:
		p.flush()
		align := parseAlign(styleProp(n, "text-align"))
		p.textBlock(n, true, func(c []Inline) Block {
			return &Paragraph{Align: align, Content: c}
		})
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		p.flush()
		level := clampLevel(int(n.Data[1] - '0'))
		align := parseAlign(styleProp(n, "text-align"))
		p.textBlock(n, false, func(c []Inline) Block {
			return &Heading{Level: level, Align: align, Content: c}
		})
	case atom.Ul, atom.Ol:
		p.flush()
		l := &List{Ordered: n.DataAtom == atom.Ol}
		var hoisted []Block
		listItems(n, l, &hoisted)
		if len(l.Items) > 0 {
			p.emit(l)
		}
		p.blocks = append(p.blocks, hoisted...)
	case atom.Blockquote:
		p.flush()
		p.blockquote(n)
	case atom.Img:
		p.flush()
		if b := imageBlock(n); b != nil {
			p.emit(b)
		}
	case atom.Br:
		if len(p.pending) > 0 {
			p.pending = append(p.pending, HardBreak{})
		}
	default:
		if !inlineElements[n.DataAtom] {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				p.block(c)
			}
			return
		}
		col := &collector{}
		col.node(n, Marks{})
		for _, it := range col.items {
			switch v := it.(type) {
			case Block:
				p.flush()
				p.emit(v)
			case Inline:
				p.pending = appendInline(p.pending, v)
			}
		}
	}
}

// textBlock collects the inline content of n into blocks built by mk.
// Embedded images split the content into separate blocks around them.
func (p *parser) textBlock(n *html.Node, allowEmpty bool, mk func([]Inline) Block) {
	col := &collector{}
	col.walk(n, Marks{})

	var run []Inline
	emitted := false
	for _, it := range col.items {
		switch v := it.(type) {
		case Block:
			if len(run) > 0 {
				p.emit(mk(run))
				run = nil
			}
			p.emit(v)
			emitted = true
		case Inline:
			run = append(run, v)
		}
	}
	if len(run) > 0 || (allowEmpty && !emitted) {
		p.emit(mk(run))
	}
}

func (p *parser) blockquote(n *html.Node) {
	q := &Blockquote{}
	var hoisted []Block
	loose := &collector{}

	addParagraph := func(col *collector, align Align) {
		content, blocks := splitItems(col.items)
		hoisted = append(hoisted, blocks...)
		if hasVisible(content) {
			q.Paragraphs = append(q.Paragraphs, Paragraph{Align: align, Content: trimTrailingSpace(content)})
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.P {
			addParagraph(loose, AlignNone)
			loose = &collector{}
			pc := &collector{}
			pc.walk(c, Marks{})
			addParagraph(pc, parseAlign(styleProp(c, "text-align")))
			continue
		}
		loose.node(c, Marks{})
	}
	addParagraph(loose, AlignNone)

	if len(q.Paragraphs) > 0 {
		p.emit(q)
	}
	p.blocks = append(p.blocks, hoisted...)
}

// listItems appends the items of a ul/ol to l, flattening nested lists.
func listItems(n *html.Node, l *List, hoisted *[]Block) {
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		col := &collector{}
		flushItem := func() {
			content, blocks := splitItems(col.items)
			*hoisted = append(*hoisted, blocks...)
			if hasVisible(content) {
				l.Items = append(l.Items, ListItem{Content: trimTrailingSpace(content)})
			}
			col = &collector{}
		}
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				flushItem()
				listItems(c, l, hoisted)
				continue
			}
			col.node(c, Marks{})
		}
		flushItem()
	}
}

// collector walks inline content, accumulating Inline values and any image
// blocks found along the way, in document order.
type collector struct {
	items []any
	link  *Link
}

func (c *collector) walk(n *html.Node, m Marks) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.node(ch, m)
	}
}

func (c *collector) node(n *html.Node, m Marks) {
	switch n.Type {
	case html.TextNode:
		c.text(Text{Value: n.Data, Marks: m})
		return
	case html.ElementNode:
	default:
		return
	}

	if dropped[n.DataAtom] {
		return
	}

	switch n.DataAtom {
	case atom.Br:
		if c.link != nil {
			c.text(Text{Value: " ", Marks: m})
			return
		}
		c.items = append(c.items, HardBreak{})
	case atom.Img:
		if b := imageBlock(n); b != nil {
			c.items = append(c.items, b)
		}
	case atom.A:
		href := strings.TrimSpace(attr(n, "href"))
		if c.link != nil || !safeHref(href) {
			c.walk(n, m)
			return
		}
		c.link = &Link{Href: href, NewTab: attr(n, "target") == "_blank"}
		c.walk(n, m)
		if len(c.link.Content) > 0 {
			c.items = append(c.items, *c.link)
		}
		c.link = nil
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		if k := len(c.items); k > 0 {
			if _, isBreak := c.items[k-1].(HardBreak); !isBreak {
				c.items = append(c.items, HardBreak{})
			}
		}
		c.walk(n, m)
	default:
		c.walk(n, applyMarks(n, m))
	}
}

func (c *collector) text(t Text) {
	if t.Value == "" {
		return
	}
	if c.link != nil {
		c.link.Content = appendLinkText(c.link.Content, t)
		return
	}
	if n := len(c.items); n > 0 {
		if prev, ok := c.items[n-1].(Text); ok && prev.Marks == t.Marks {
			c.items[n-1] = Text{Value: prev.Value + t.Value, Marks: t.Marks}
			return
		}
	}
	c.items = append(c.items, t)
}

func applyMarks(n *html.Node, m Marks) Marks {
	switch n.DataAtom {
	case atom.Strong, atom.B:
		m.Bold = true
	case atom.Em, atom.I:
		m.Italic = true
	case atom.U:
		m.Underline = true
	case atom.S, atom.Strike, atom.Del:
		m.Strike = true
	case atom.Code, atom.Kbd, atom.Samp:
		m.Code = true
	case atom.Mark:
		color := attr(n, "data-color")
		if color == "" {
			color = styleProp(n, "background-color")
		}
		if cssColor.MatchString(color) {
			m.Highlight = color
		} else {
			m.Highlight = DefaultHighlight
		}
	case atom.Span:
		if color := styleProp(n, "color"); cssColor.MatchString(color) {
			m.Color = color
		}
		if font := styleProp(n, "font-family"); cssFont.MatchString(font) {
			m.FontFamily = font
		}
	}
	return m
}

func imageBlock(n *html.Node) Block {
	src := strings.TrimSpace(attr(n, "src"))
	width := widthOf(n)
	if kind, ok := shapeFromSrc(src); ok {
		return &Shape{Kind: kind, Width: width}
	}
	if !SafeImageSrc(src) {
		return nil
	}
	return &Image{Src: src, Alt: attr(n, "alt"), Title: attr(n, "title"), Width: width}
}

// widthOf reads an image width from the width attribute or a percentage
// style width, defaulting to full width.
func widthOf(n *html.Node) int {
	raw := attr(n, "width")
	if raw == "" {
		raw = styleProp(n, "width")
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	w, err := strconv.Atoi(raw)
	if err != nil || w <= 0 {
		return DefaultImageWidth
	}
	return clampWidth(w)
}

// safeHref reports whether a link target may be kept.
func safeHref(href string) bool {
	if href == "" {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	default:
		return false
	}
}

// SafeImageSrc reports whether src may be used as an image source: http(s),
// relative, or a base64 data URI of a common image type.
func SafeImageSrc(src string) bool {
	if src == "" {
		return false
	}
	lower := strings.ToLower(src)
	if strings.HasPrefix(lower, "data:") {
		for _, t := range imageTypes {
			if strings.HasPrefix(lower, "data:image/"+t+";base64,") {
				return true
			}
		}
		return false
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return true
	default:
		return false
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// styleProp returns one declaration from an inline style attribute.
func styleProp(n *html.Node, prop string) string {
	for _, decl := range strings.Split(attr(n, "style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), prop) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func splitItems(items []any) ([]Inline, []Block) {
	var content []Inline
	var blocks []Block
	for _, it := range items {
		switch v := it.(type) {
		case Block:
			blocks = append(blocks, v)
		case Inline:
			content = append(content, v)
		}
	}
	return content, blocks
}

func appendInline(runs []Inline, in Inline) []Inline {
	if t, ok := in.(Text); ok {
		return appendText(runs, t)
	}
	return append(runs, in)
}

// hasVisible reports whether content holds anything but whitespace.
func hasVisible(content []Inline) bool {
	for _, in := range content {
		switch v := in.(type) {
		case Text:
			if strings.TrimSpace(v.Value) != "" {
				return true
			}
		case Link, HardBreak:
			return true
		}
	}
	return false
}

func trimTrailingSpace(content []Inline) []Inline {
	for len(content) > 0 {
		last, ok := content[len(content)-1].(Text)
		if !ok {
			return content
		}
		last.Value = strings.TrimRightFunc(last.Value, unicode.IsSpace)
		if last.Value != "" {
			content[len(content)-1] = last
			return content
		}
		content = content[:len(content)-1]
	}
	return nil
}
