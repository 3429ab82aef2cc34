package timeline

import "time"

// Reference is one resolved reference cell of an event row.
//
// A plain-text reference only carries Text. A link reference also carries
// Link, and Title, Description and Image are filled in when the linked page
// could be fetched and exposed that metadata.
type Reference struct {
	Text        string  `json:"text" yaml:"text"`
	Link        *string `json:"link,omitempty" yaml:"link,omitempty"`
	Title       *string `json:"title,omitempty" yaml:"title,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	Image       *string `json:"image,omitempty" yaml:"image,omitempty"`
}

// TextReference returns a plain-text reference.
func TextReference(raw string) Reference {
	return Reference{Text: raw}
}

// LinkReference returns a link reference without any page metadata.
func LinkReference(raw string) Reference {
	link := raw
	return Reference{Text: raw, Link: &link}
}

// IsLink reports whether the reference points at a web page.
func (r Reference) IsLink() bool {
	return IsPresent(r.Link)
}

// HasMetadata reports whether any page metadata was resolved.
func (r Reference) HasMetadata() bool {
	return IsPresent(r.Title) || IsPresent(r.Description) || IsPresent(r.Image)
}

// Event is a single dated entry of the timeline.
type Event struct {
	Date       time.Time   `json:"date" yaml:"date"`
	Summary    string      `json:"summary" yaml:"summary"`
	References []Reference `json:"references,omitempty" yaml:"references,omitempty"`
}

// ID returns the event's anchor identifier. See FormatID.
func (e Event) ID() string {
	return FormatID(e)
}

// Timeline is a sequence of events ordered ascending by date.
type Timeline []Event

// IsPresent reports whether an optional value is set and non-empty.
func IsPresent[T ~string](v *T) bool {
	return v != nil && len(*v) > 0
}

// Optional returns a pointer to s, or nil when s is empty.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
