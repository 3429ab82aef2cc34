package linkenricher

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/c360studio/semtimeline/timeline"
)

// Head metadata selectors. Only elements under <head> count.
const (
	titleSelector         = "head title"
	descriptionSelector   = `head meta[name="description"]`
	ogDescriptionSelector = `head meta[property="og:description"]`
	ogImageSelector       = `head meta[property="og:image"]`
	contentAttr           = "content"
)

// Metadata is the display metadata found in a page head. Each field is nil
// when the page does not provide it.
type Metadata struct {
	Title       *string
	Description *string
	Image       *string
}

// Extract reads title, description and preview image from an HTML document.
// The encoding is sniffed from the document itself.
func Extract(body []byte) Metadata {
	return ExtractContent(body, "")
}

// ExtractContent is Extract for a body served with the given Content-Type,
// which is used to decode non-UTF-8 pages. Parsing is lenient: malformed
// markup never fails, missing elements yield nil fields.
func ExtractContent(body []byte, contentType string) Metadata {
	var r io.Reader = bytes.NewReader(body)
	if decoded, err := charset.NewReader(r, contentType); err == nil {
		r = decoded
	} else {
		r = bytes.NewReader(body)
	}

	root, err := html.Parse(r)
	if err != nil {
		return Metadata{}
	}
	doc := goquery.NewDocumentFromNode(root)

	return Metadata{
		Title:       firstText(doc, titleSelector),
		Description: extractDescription(doc),
		Image:       firstContent(doc, ogImageSelector),
	}
}

// extractDescription prefers meta description and falls back to
// og:description when the former is missing or empty.
func extractDescription(doc *goquery.Document) *string {
	description := firstContent(doc, descriptionSelector)
	if !timeline.IsPresent(description) {
		description = firstContent(doc, ogDescriptionSelector)
	}
	return description
}

// firstText returns the trimmed text of the first match, or nil.
func firstText(doc *goquery.Document, selector string) *string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(sel.Text())
	return &text
}

// firstContent returns the content attribute of the first match, or nil when
// there is no match or the attribute is missing.
func firstContent(doc *goquery.Document, selector string) *string {
	content, ok := doc.Find(selector).First().Attr(contentAttr)
	if !ok {
		return nil
	}
	return &content
}
