// Package timelinedocuments turns a built timeline into the data document
// consumed by site renderers, writes it as JSON or YAML, and optionally
// publishes it over NATS.
package timelinedocuments

import (
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/semtimeline/timeline"
)

// DefaultTitle is used when no title is configured.
const DefaultTitle = "Timeline"

const (
	dateLayout        = "2006-01-02"
	displayDateLayout = "January 02, 2006"
)

// Reference kinds.
const (
	KindLink = "link"
	KindText = "text"
)

// Document is one build of a timeline.
type Document struct {
	BuildID     string          `json:"build_id" yaml:"build_id"`
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
	Title       string          `json:"title" yaml:"title"`
	Events      []EventDocument `json:"events" yaml:"events"`
}

// EventDocument is a display-ready event.
type EventDocument struct {
	ID          string              `json:"id" yaml:"id"`
	Date        string              `json:"date" yaml:"date"`
	DisplayDate string              `json:"display_date" yaml:"display_date"`
	Summary     string              `json:"summary" yaml:"summary"`
	References  []ReferenceDocument `json:"references,omitempty" yaml:"references,omitempty"`
}

// ReferenceDocument is a display-ready reference. DisplayTitle is the page
// title for links that have one, otherwise the link itself; it is empty for
// plain text.
type ReferenceDocument struct {
	Kind         string  `json:"kind" yaml:"kind"`
	Text         string  `json:"text" yaml:"text"`
	Link         *string `json:"link,omitempty" yaml:"link,omitempty"`
	DisplayTitle string  `json:"display_title,omitempty" yaml:"display_title,omitempty"`
	Title        *string `json:"title,omitempty" yaml:"title,omitempty"`
	Description  *string `json:"description,omitempty" yaml:"description,omitempty"`
	Image        *string `json:"image,omitempty" yaml:"image,omitempty"`
}

// NewDocument builds a document from an ordered timeline. Event order is
// kept as given.
func NewDocument(title string, events timeline.Timeline) *Document {
	if title == "" {
		title = DefaultTitle
	}

	doc := &Document{
		BuildID:     uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Title:       title,
		Events:      make([]EventDocument, 0, len(events)),
	}
	for _, e := range events {
		doc.Events = append(doc.Events, newEventDocument(e))
	}
	return doc
}

func newEventDocument(e timeline.Event) EventDocument {
	ed := EventDocument{
		ID:          timeline.FormatID(e),
		Date:        e.Date.Format(dateLayout),
		DisplayDate: e.Date.Format(displayDateLayout),
		Summary:     e.Summary,
	}
	for _, ref := range e.References {
		ed.References = append(ed.References, newReferenceDocument(ref))
	}
	return ed
}

func newReferenceDocument(ref timeline.Reference) ReferenceDocument {
	rd := ReferenceDocument{
		Kind:        KindText,
		Text:        ref.Text,
		Link:        ref.Link,
		Title:       ref.Title,
		Description: ref.Description,
		Image:       ref.Image,
	}
	if !ref.IsLink() {
		return rd
	}

	rd.Kind = KindLink
	if timeline.IsPresent(ref.Title) {
		rd.DisplayTitle = *ref.Title
	} else {
		rd.DisplayTitle = *ref.Link
	}
	return rd
}
