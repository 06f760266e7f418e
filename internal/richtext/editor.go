// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package richtext

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidWidth is returned when an image width is outside 25-100%.
var ErrInvalidWidth = errors.New("image width must be between 25 and 100 percent")

// AppendImage adds a full-width image block at the end of the document.
func (d *Document) AppendImage(src, alt string) error {
	if !SafeImageSrc(src) {
		return fmt.Errorf("image source %q is not allowed", src)
	}
	d.Blocks = append(d.Blocks, &Image{Src: src, Alt: alt, Width: DefaultImageWidth})
	return nil
}

// AppendShape adds a built-in shape at the end of the document.
func (d *Document) AppendShape(kind ShapeKind) error {
	if _, ok := ParseShapeKind(string(kind)); !ok {
		return fmt.Errorf("unknown shape %q", kind)
	}
	d.Blocks = append(d.Blocks, &Shape{Kind: kind, Width: DefaultImageWidth})
	return nil
}

// AppendLink adds a paragraph holding a single link that opens in a new tab.
func (d *Document) AppendLink(href, text string) error {
	if !safeHref(strings.TrimSpace(href)) {
		return fmt.Errorf("link target %q is not allowed", href)
	}
	if text == "" {
		text = href
	}
	d.Blocks = append(d.Blocks, &Paragraph{Content: []Inline{
		Link{Href: href, NewTab: true, Content: []Text{{Value: text}}},
	}})
	return nil
}

// Images returns the image and shape blocks in document order.
func (d *Document) Images() []Block {
	var out []Block
	for _, b := range d.Blocks {
		switch b.(type) {
		case *Image, *Shape:
			out = append(out, b)
		}
	}
	return out
}

// SetImageWidth resizes the index-th image or shape (see Images).
func (d *Document) SetImageWidth(index, width int) error {
	if width < MinImageWidth || width > MaxImageWidth {
		return ErrInvalidWidth
	}
	images := d.Images()
	if index < 0 || index >= len(images) {
		return fmt.Errorf("image %d out of range (document has %d)", index, len(images))
	}
	switch img := images[index].(type) {
	case *Image:
		img.Width = width
	case *Shape:
		img.Width = width
	}
	return nil
}
