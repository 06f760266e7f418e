// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"techblog/internal/apperr"
	"techblog/internal/config"
	"techblog/internal/markdown"
	"techblog/internal/richtext"
)

// Format is the content mode of a deployment. Both modes store their
// markup in the same content column; a post is always rendered with the
// format it was written in.
type Format interface {
	Mode() string
	// Ingest canonicalizes content submitted by the editor.
	Ingest(content string) (string, error)
	// Render turns stored content into display HTML.
	Render(content string) (template.HTML, error)
	InsertImage(content, src, alt string) (string, error)
	InsertLink(content, href, text string) (string, error)
	InsertShape(content string, kind richtext.ShapeKind) (string, error)
	ResizeImage(content string, index, width int) (string, error)
}

// FormatFor returns the Format for a configured content mode.
func FormatFor(mode string) Format {
	if mode == config.ModeRichText {
		return RichText{}
	}
	return Markdown{}
}

// Markdown stores raw Markdown and renders it at display time.
type Markdown struct{}

func (Markdown) Mode() string { return config.ModeMarkdown }

func (Markdown) Ingest(content string) (string, error) {
	return strings.ReplaceAll(content, "\r\n", "\n"), nil
}

func (Markdown) Render(content string) (template.HTML, error) {
	out, err := markdown.ToHTML(content)
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

func (Markdown) InsertImage(content, src, alt string) (string, error) {
	return appendMarkdown(content, "!["+escapeLinkText(alt)+"]("+src+")"), nil
}

func (Markdown) InsertLink(content, href, text string) (string, error) {
	if text == "" {
		text = href
	}
	return appendMarkdown(content, "["+escapeLinkText(text)+"]("+href+")"), nil
}

func (m Markdown) InsertShape(content string, kind richtext.ShapeKind) (string, error) {
	if _, ok := richtext.ParseShapeKind(string(kind)); !ok {
		return "", apperr.New(apperr.ErrValidation, "Unknown shape")
	}
	return m.InsertImage(content, kind.DataURI(), kind.Label())
}

func (Markdown) ResizeImage(string, int, int) (string, error) {
	return "", apperr.New(apperr.ErrValidation, "Images can only be resized in the rich-text editor")
}

func appendMarkdown(content, line string) string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return line + "\n"
	}
	return content + "\n\n" + line + "\n"
}

var linkTextEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)

func escapeLinkText(s string) string {
	return linkTextEscaper.Replace(s)
}

// RichText stores serialized rich-text documents.
type RichText struct{}

func (RichText) Mode() string { return config.ModeRichText }

func (RichText) Ingest(content string) (string, error) {
	out, err := richtext.Normalize(content)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrValidation, "Content could not be read", err)
	}
	return out, nil
}

func (RichText) Render(content string) (template.HTML, error) {
	return richtext.Render(content)
}

func (RichText) InsertImage(content, src, alt string) (string, error) {
	return editDocument(content, func(d *richtext.Document) error { return d.AppendImage(src, alt) })
}

func (RichText) InsertLink(content, href, text string) (string, error) {
	return editDocument(content, func(d *richtext.Document) error { return d.AppendLink(href, text) })
}

func (RichText) InsertShape(content string, kind richtext.ShapeKind) (string, error) {
	return editDocument(content, func(d *richtext.Document) error { return d.AppendShape(kind) })
}

func (RichText) ResizeImage(content string, index, width int) (string, error) {
	return editDocument(content, func(d *richtext.Document) error { return d.SetImageWidth(index, width) })
}

func editDocument(content string, edit func(*richtext.Document) error) (string, error) {
	doc, err := richtext.Parse(content)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrValidation, "Content could not be read", err)
	}
	if err := edit(&doc); err != nil {
		if errors.Is(err, richtext.ErrInvalidWidth) {
			return "", apperr.Wrap(apperr.ErrValidation, "Image width must be between 25% and 100%", err)
		}
		return "", apperr.Wrap(apperr.ErrValidation, "That edit is not allowed", err)
	}
	return richtext.Serialize(doc), nil
}

// ContentImage is one resizable image of rich-text content, addressed by
// its position for ResizeImage.
type ContentImage struct {
	Index int
	Src   string
	Label string
	Width int
}

// ContentImages lists the images and shapes of content in document order.
// Markdown content has no resizable images.
func ContentImages(f Format, content string) []ContentImage {
	if f.Mode() != config.ModeRichText || content == "" {
		return nil
	}
	doc, err := richtext.Parse(content)
	if err != nil {
		return nil
	}
	var out []ContentImage
	for i, b := range doc.Images() {
		ci := ContentImage{Index: i}
		switch img := b.(type) {
		case *richtext.Image:
			ci.Src, ci.Label, ci.Width = img.Src, img.Alt, img.Width
		case *richtext.Shape:
			ci.Src, ci.Label, ci.Width = img.Kind.DataURI(), img.Kind.Label(), img.Width
		}
		if ci.Width == 0 {
			ci.Width = richtext.DefaultImageWidth
		}
		if ci.Label == "" {
			ci.Label = fmt.Sprintf("Image %d", i+1)
		}
		out = append(out, ci)
	}
	return out
}
