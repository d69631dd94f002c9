// Package dicom holds the tag-keyed DICOM JSON model the archive returns
// and the textual value conventions shared by the query builder and the
// result normalizer.
package dicom

import (
	"fmt"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// PatientVerificationStatus is the archive-specific patient verification attribute.
// It is not part of the standard dictionary.
var PatientVerificationStatus = tag.Tag{Group: 0x0010, Element: 0x1024}

// Key renders a tag as the 8-hex-digit attribute key used by DICOM JSON (e.g. "00100010").
func Key(t tag.Tag) string {
	return fmt.Sprintf("%04X%04X", t.Group, t.Element)
}

// isTagKey reports whether s looks like a DICOM JSON attribute key.
func isTagKey(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// IncludeFields renders tags as a comma-separated includefield value.
func IncludeFields(tags ...tag.Tag) string {
	out := make([]byte, 0, len(tags)*9)
	for i, t := range tags {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, Key(t)...)
	}
	return string(out)
}
