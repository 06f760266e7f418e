// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package media

import (
	"bytes"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"techblog/internal/models"
)

// resolveContentType keeps the declared type unless it is missing or
// generic, in which case the content is sniffed.
func resolveContentType(declared string, data []byte) string {
	ct := strings.TrimSpace(declared)
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return mimetype.Detect(data).String()
}

// dimensions decodes just the image header. Formats without a registered
// decoder (SVG among them) yield nil.
func dimensions(data []byte) *models.Dimensions {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return &models.Dimensions{Width: cfg.Width, Height: cfg.Height}
}

var safeExt = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

// extension returns the file's own extension, lowercased and without the
// dot, falling back to one registered for the content type, then "bin".
// Extensions that are not short alphanumerics are ignored because they end
// up in object keys and public URLs.
func extension(name, contentType string) string {
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")); safeExt.MatchString(ext) {
		return ext
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if exts, err := mime.ExtensionsByType(mediaType); err == nil {
		for _, e := range exts {
			if ext := strings.TrimPrefix(e, "."); safeExt.MatchString(ext) {
				return ext
			}
		}
	}
	return "bin"
}
