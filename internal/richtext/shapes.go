// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package richtext

import (
	"encoding/base64"
)

// ShapeKind names a built-in vector shape.
type ShapeKind string

const (
	ShapeCircle   ShapeKind = "circle"
	ShapeSquare   ShapeKind = "square"
	ShapeTriangle ShapeKind = "triangle"
	ShapeStar     ShapeKind = "star"
	ShapeArrow    ShapeKind = "arrow"
	ShapeHexagon  ShapeKind = "hexagon"
)

type shapeDef struct {
	label string
	svg   string
}

var shapeDefs = map[ShapeKind]shapeDef{
	ShapeCircle: {
		label: "Circle",
		svg:   `<svg width="100" height="100" viewBox="0 0 100 100"><circle cx="50" cy="50" r="40" fill="#3b82f6" /></svg>`,
	},
	ShapeSquare: {
		label: "Square",
		svg:   `<svg width="100" height="100" viewBox="0 0 100 100"><rect x="10" y="10" width="80" height="80" fill="#a855f7" /></svg>`,
	},
	ShapeTriangle: {
		label: "Triangle",
		svg:   `<svg width="100" height="100" viewBox="0 0 100 100"><path d="M 50 10 L 90 80 L 10 80 Z" fill="#ec4899" /></svg>`,
	},
	ShapeStar: {
		label: "Star",
		svg:   `<svg width="100" height="100" viewBox="0 0 100 100"><path d="M 50 10 L 61 39 L 92 39 L 68 58 L 78 87 L 50 68 L 22 87 L 32 58 L 8 39 L 39 39 Z" fill="#eab308" /></svg>`,
	},
	ShapeArrow: {
		label: "Arrow Right",
		svg:   `<svg width="120" height="60" viewBox="0 0 120 60"><path d="M 0 20 L 80 20 L 80 0 L 120 30 L 80 60 L 80 40 L 0 40 Z" fill="#22c55e" /></svg>`,
	},
	ShapeHexagon: {
		label: "Hexagon",
		svg:   `<svg width="100" height="100" viewBox="0 0 100 100"><path d="M 50 5 L 85 25 L 85 65 L 50 85 L 15 65 L 15 25 Z" fill="#f97316" /></svg>`,
	},
}

// shapeOrder is the toolbar order.
var shapeOrder = []ShapeKind{ShapeCircle, ShapeSquare, ShapeTriangle, ShapeStar, ShapeArrow, ShapeHexagon}

// shapeByURI maps each encoded data URI back to its shape.
var shapeByURI = func() map[string]ShapeKind {
	m := make(map[string]ShapeKind, len(shapeDefs))
	for kind := range shapeDefs {
		m[kind.DataURI()] = kind
	}
	return m
}()

// Shapes returns every built-in shape in toolbar order.
func Shapes() []ShapeKind {
	out := make([]ShapeKind, len(shapeOrder))
	copy(out, shapeOrder)
	return out
}

// ParseShapeKind validates a shape name.
func ParseShapeKind(s string) (ShapeKind, bool) {
	k := ShapeKind(s)
	_, ok := shapeDefs[k]
	return k, ok
}

// Label is the human-readable name shown in the toolbar.
func (k ShapeKind) Label() string {
	return shapeDefs[k].label
}

// SVG returns the literal vector markup of the shape.
func (k ShapeKind) SVG() string {
	return shapeDefs[k].svg
}

// DataURI returns the shape encoded as a base64 SVG data URI, the form in
// which it is embedded as an image source.
func (k ShapeKind) DataURI() string {
	svg := shapeDefs[k].svg
	if svg == "" {
		return ""
	}
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

func shapeFromSrc(src string) (ShapeKind, bool) {
	k, ok := shapeByURI[src]
	return k, ok
}
