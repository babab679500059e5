package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_ToJSON(t *testing.T) {
	metadata := &Metadata{
		Source:    "Profile.pdf",
		Format:    FormatPDF,
		Timestamp: "2024-01-01T00:00:00Z",
		Hash:      "abcd1234",
		WordCount: 120,
		Pages:     2,
	}

	jsonBytes, err := metadata.ToJSON()
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(jsonBytes, &fields))
	assert.Equal(t, "pdf", fields["format"])
	assert.Equal(t, float64(120), fields["wordCount"])
	assert.NotContains(t, fields, "platform")
}

func TestComputeHash(t *testing.T) {
	hash1 := computeHash("test content")
	hash2 := computeHash("different content")

	assert.Len(t, hash1, 64)
	assert.NotEqual(t, hash1, hash2)
	assert.Equal(t, hash1, computeHash("test content"))
}

func TestNewMetadata(t *testing.T) {
	content := "Staff engineer at Acme"
	metadata := NewMetadata(content, "https://example.com/job", FormatMarkdown)

	assert.Equal(t, "https://example.com/job", metadata.Source)
	assert.Equal(t, FormatMarkdown, metadata.Format)
	assert.Equal(t, 4, metadata.WordCount)
	assert.Equal(t, computeHash(content), metadata.Hash)

	_, err := time.Parse(time.RFC3339, metadata.Timestamp)
	assert.NoError(t, err)
}
