// Package watermark renders stamped preview derivatives of deliverables.
// The renderer reads the original object server-side and only ever hands
// back the key of the derivative.
package watermark

import (
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MediaKind selects the stamping strategy.
type MediaKind string

const (
	KindImage   MediaKind = "image"
	KindPDF     MediaKind = "pdf"
	KindUnknown MediaKind = "unknown"
)

// KindOf classifies a deliverable by file name. Content is verified again
// when it is decoded.
func KindOf(name string) MediaKind {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return KindImage
	case ".pdf":
		return KindPDF
	}
	return KindUnknown
}

// KindOfContent classifies by the bytes themselves, for originals whose
// name carries no usable extension.
func KindOfContent(data []byte) MediaKind {
	m := mimetype.Detect(data)
	switch {
	case m.Is("application/pdf"):
		return KindPDF
	case m.Is("image/png"), m.Is("image/jpeg"), m.Is("image/gif"), m.Is("image/webp"):
		return KindImage
	}
	return KindUnknown
}

// DefaultText is stamped when the owner has not set watermark text.
const DefaultText = "PREVIEW - NOT FOR USE"

// TextOrDefault returns the text to stamp.
func TextOrDefault(text *string) string {
	if text == nil || strings.TrimSpace(*text) == "" {
		return DefaultText
	}
	return strings.TrimSpace(*text)
}
