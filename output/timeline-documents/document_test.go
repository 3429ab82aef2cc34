package timelinedocuments

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/semtimeline/timeline"
)

func sampleTimeline() timeline.Timeline {
	enriched := timeline.LinkReference("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	enriched.Title = timeline.Optional("Rick Astley - Never Gonna Give You Up")
	enriched.Image = timeline.Optional("https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg")

	return timeline.Timeline{
		{
			Date:       time.Date(1987, 7, 27, 0, 0, 0, 0, time.UTC),
			Summary:    `"Never Gonna Give You Up" released`,
			References: []timeline.Reference{timeline.TextReference("extra text")},
		},
		{
			Date:    time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC),
			Summary: "Launch",
			References: []timeline.Reference{
				enriched,
				timeline.LinkReference("https://example.com/unreachable"),
			},
		},
		{
			Date:    time.Date(2022, 1, 9, 0, 0, 0, 0, time.UTC),
			Summary: "No references",
		},
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("", sampleTimeline())

	assert.Equal(t, DefaultTitle, doc.Title)
	_, err := uuid.Parse(doc.BuildID)
	assert.NoError(t, err)
	assert.False(t, doc.GeneratedAt.IsZero())
	require.Len(t, doc.Events, 3)

	first := doc.Events[0]
	assert.Equal(t, "1987-07-27--never-gonna-give-yo", first.ID)
	assert.Equal(t, "1987-07-27", first.Date)
	assert.Equal(t, "July 27, 1987", first.DisplayDate)
	require.Len(t, first.References, 1)
	assert.Equal(t, KindText, first.References[0].Kind)
	assert.Equal(t, "extra text", first.References[0].Text)
	assert.Empty(t, first.References[0].DisplayTitle)

	second := doc.Events[1]
	assert.Equal(t, "March 04, 2021", second.DisplayDate)
	require.Len(t, second.References, 2)
	assert.Equal(t, KindLink, second.References[0].Kind)
	assert.Equal(t, "Rick Astley - Never Gonna Give You Up", second.References[0].DisplayTitle)
	assert.Equal(t, KindLink, second.References[1].Kind)
	assert.Equal(t, "https://example.com/unreachable", second.References[1].DisplayTitle)
	assert.Nil(t, second.References[1].Title)

	assert.Empty(t, doc.Events[2].References)
}

func TestNewDocument_Title(t *testing.T) {
	doc := NewDocument("History", nil)
	assert.Equal(t, "History", doc.Title)
	assert.NotNil(t, doc.Events)
	assert.Empty(t, doc.Events)

	other := NewDocument("History", nil)
	assert.NotEqual(t, doc.BuildID, other.BuildID)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatJSON},
		{input: "json", want: FormatJSON},
		{input: "JSON", want: FormatJSON},
		{input: "yaml", want: FormatYAML},
		{input: "yml", want: FormatYAML},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("_data/timeline.yml", FormatJSON))
	assert.Equal(t, FormatJSON, FormatForPath("timeline.json", FormatYAML))
	assert.Equal(t, FormatYAML, FormatForPath("timeline.out", FormatYAML))
}

func TestEncode(t *testing.T) {
	doc := NewDocument("Timeline", sampleTimeline())

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, doc, FormatJSON))

		var decoded Document
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, doc.Events, decoded.Events)
		assert.Contains(t, buf.String(), `"display_title": "Rick Astley - Never Gonna Give You Up"`)
		assert.NotContains(t, buf.String(), `&`)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, doc, FormatYAML))

		var decoded Document
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, doc.Events, decoded.Events)
		assert.Contains(t, buf.String(), "title: Timeline")
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, Encode(&bytes.Buffer{}, doc, Format("xml")))
	})
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "_data", "timeline.json")

	doc := NewDocument("Timeline", sampleTimeline())
	require.NoError(t, WriteFile(path, doc, FormatJSON))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, doc.BuildID, decoded.BuildID)

	// Overwrite leaves no temp files behind.
	require.NoError(t, WriteFile(path, NewDocument("Again", nil), FormatJSON))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
