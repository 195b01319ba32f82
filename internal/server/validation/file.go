// Package validation checks uploaded files before any network call is made
// and derives storage-safe file names.
package validation

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
)

// AllowedContentTypes are accepted for payment proofs and deliverables alike.
var AllowedContentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
}

var dangerousExtensions = []string{"exe", "bat", "cmd", "scr", "pif", "js", "vbs", "jar"}

const maxFileNameLength = 100

var (
	disallowedChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
	repeatedDashes  = regexp.MustCompile(`-{2,}`)
	repeatedDots    = regexp.MustCompile(`\.{2,}`)
)

// ValidateUpload rejects files that are empty, larger than
// common.MaxUploadSize, of a type outside AllowedContentTypes, named with a
// dangerous extension token, or whose content does not match the declared
// type. The last two report common.ErrSuspiciousContent.
func ValidateUpload(u models.Upload) error {
	if u.Size() == 0 {
		return fmt.Errorf("%w: file is empty", common.ErrValidation)
	}
	if u.Size() > common.MaxUploadSize {
		return fmt.Errorf("%w: file exceeds %d bytes", common.ErrValidation, common.MaxUploadSize)
	}

	contentType := normalizeContentType(u.ContentType)
	if !slices.Contains(AllowedContentTypes, contentType) {
		return fmt.Errorf("%w: content type %q is not allowed", common.ErrValidation, u.ContentType)
	}

	if ext, ok := dangerousExtension(u.Name); ok {
		return fmt.Errorf("%w: %w: file name carries .%s", common.ErrValidation, common.ErrSuspiciousContent, ext)
	}

	detected := mimetype.Detect(u.Data)
	if !detected.Is(contentType) {
		return fmt.Errorf("%w: %w: declared %s, content is %s", common.ErrValidation, common.ErrSuspiciousContent, contentType, detected.String())
	}

	return nil
}

// IsSuspicious reports whether err flags a spoofing attempt.
func IsSuspicious(err error) bool {
	return errors.Is(err, common.ErrSuspiciousContent)
}

func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// dangerousExtension looks at every dot-separated token after the base name,
// so "invoice.pdf.exe" and "run.js.png" are both caught.
func dangerousExtension(name string) (string, bool) {
	tokens := strings.Split(strings.ToLower(path.Base(toSlash(name))), ".")
	for _, tok := range tokens[1:] {
		if slices.Contains(dangerousExtensions, strings.TrimSpace(tok)) {
			return tok, true
		}
	}
	return "", false
}

// SanitizeFileName reduces name to [a-zA-Z0-9.-], collapses repeated
// separators and caps the length while keeping a short extension.
func SanitizeFileName(name string) string {
	s := path.Base(toSlash(name))
	s = disallowedChars.ReplaceAllString(s, "-")
	s = repeatedDashes.ReplaceAllString(s, "-")
	s = repeatedDots.ReplaceAllString(s, ".")
	s = strings.Trim(s, ".-")

	if len(s) > maxFileNameLength {
		ext := path.Ext(s)
		if len(ext) > 10 {
			ext = ""
		}
		s = strings.TrimRight(s[:maxFileNameLength-len(ext)], ".-") + ext
	}

	if s == "" {
		return "file"
	}
	return s
}

func toSlash(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}
