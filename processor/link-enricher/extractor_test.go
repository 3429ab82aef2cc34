package linkenricher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		html string
		want Metadata
	}{
		{
			name: "full head metadata",
			html: `<!DOCTYPE html><html><head>
<title>Rick Astley - Never Gonna Give You Up (Official Music Video) - YouTube</title>
<meta name="description" content="The official video.">
<meta property="og:description" content="OG description">
<meta property="og:image" content="https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg">
</head><body></body></html>`,
			want: Metadata{
				Title:       strPtr("Rick Astley - Never Gonna Give You Up (Official Music Video) - YouTube"),
				Description: strPtr("The official video."),
				Image:       strPtr("https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg"),
			},
		},
		{
			name: "og description fallback when meta description missing",
			html: `<html><head><title>T</title><meta property="og:description" content="From OG"></head></html>`,
			want: Metadata{
				Title:       strPtr("T"),
				Description: strPtr("From OG"),
			},
		},
		{
			name: "og description fallback when meta description empty",
			html: `<html><head><meta name="description" content=""><meta property="og:description" content="From OG"></head></html>`,
			want: Metadata{
				Description: strPtr("From OG"),
			},
		},
		{
			name: "empty meta description without fallback",
			html: `<html><head><meta name="description" content=""></head></html>`,
			want: Metadata{},
		},
		{
			name: "first matching element wins",
			html: `<html><head><title>One</title><title>Two</title>
<meta property="og:image" content="a.png"><meta property="og:image" content="b.png"></head></html>`,
			want: Metadata{
				Title: strPtr("One"),
				Image: strPtr("a.png"),
			},
		},
		{
			name: "title whitespace trimmed",
			html: `<html><head><title>
   Spaced Title  </title></head></html>`,
			want: Metadata{Title: strPtr("Spaced Title")},
		},
		{
			name: "meta without content attribute",
			html: `<html><head><meta property="og:image"></head></html>`,
			want: Metadata{},
		},
		{
			name: "no head metadata",
			html: `<html><head></head><body><p>Content</p></body></html>`,
			want: Metadata{},
		},
		{
			name: "elements outside head ignored",
			html: `<html><head></head><body><svg><title>Icon</title></svg>
<meta property="og:image" content="body.png"></body></html>`,
			want: Metadata{},
		},
		{
			name: "malformed markup",
			html: `<html><head><title>Broken</title><meta name="description" content="still here"><p>unclosed <b>tags</head><body>`,
			want: Metadata{Title: strPtr("Broken"), Description: strPtr("still here")},
		},
		{
			name: "not html at all",
			html: `{"json": true}`,
			want: Metadata{},
		},
		{
			name: "empty body",
			html: ``,
			want: Metadata{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract([]byte(tt.html))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_PrefersMetaDescription(t *testing.T) {
	got := Extract([]byte(`<html><head>
<meta property="og:description" content="second">
<meta name="description" content="first">
</head></html>`))
	require.NotNil(t, got.Description)
	assert.Equal(t, "first", *got.Description)
}

func TestExtractContent_Charset(t *testing.T) {
	// "Café" in ISO-8859-1.
	body := []byte("<html><head><title>Caf\xe9</title></head></html>")

	got := ExtractContent(body, "text/html; charset=iso-8859-1")
	require.NotNil(t, got.Title)
	assert.Equal(t, "Café", *got.Title)
}

func TestExtract_Deterministic(t *testing.T) {
	body := []byte(`<html><head><title>Same</title><meta property="og:image" content="i.png"></head></html>`)
	assert.Equal(t, Extract(body), Extract(body))
}
