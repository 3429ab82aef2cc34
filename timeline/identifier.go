package timeline

import (
	"regexp"
	"strings"
)

// maxSlugLength caps the summary part of an identifier, counted in characters
// after separator collapsing.
const maxSlugLength = 20

const idDateLayout = "2006-01-02"

var slugSeparatorRe = regexp.MustCompile(`[^a-z0-9]+`)

// FormatID derives the anchor identifier of an event: the date as YYYY-MM-DD,
// a hyphen, and at most 20 characters of the summary slug.
//
// The slug is the trimmed, lower-cased summary with every run of characters
// outside [a-z0-9] replaced by a single hyphen. Truncation may cut mid-word and
// may leave a trailing hyphen.
func FormatID(e Event) string {
	slug := strings.ToLower(strings.TrimSpace(e.Summary))
	slug = slugSeparatorRe.ReplaceAllString(slug, "-")
	// Only ASCII survives the replacement, so byte truncation is safe.
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	return e.Date.Format(idDateLayout) + "-" + slug
}
