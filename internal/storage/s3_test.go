package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateImageType(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		filename    string
		want        bool
	}{
		{"jpeg by content type", "image/jpeg", "photo.bin", true},
		{"png by extension", "", "concept.png", true},
		{"webp upper case name", "", "REF.WEBP", true},
		{"video rejected", "video/mp4", "clip.mp4", false},
		{"pdf rejected", "application/pdf", "script.pdf", false},
		{"nothing to go on", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ValidateImageType(tc.contentType, tc.filename))
		})
	}
}

func TestContentTypeForFilename(t *testing.T) {
	require.Equal(t, "image/jpeg", ContentTypeForFilename("still.JPG"))
	require.Equal(t, "image/webp", ContentTypeForFilename("ref.webp"))
	require.Equal(t, "application/octet-stream", ContentTypeForFilename("mystery.dat"))
}

func TestMediaKeyLayout(t *testing.T) {
	key := MediaKey("story-1", "characters", "char-2", "concept.png")

	require.True(t, strings.HasPrefix(key, "stories/story-1/characters/char-2/"))
	require.True(t, strings.HasSuffix(key, ".png"))

	// Unknown extensions are dropped rather than trusted.
	bare := MediaKey("story-1", "assets", "asset-3", "payload.exe")
	require.False(t, strings.Contains(bare, "."))

	// Keys for the same filename never collide.
	require.NotEqual(t, key, MediaKey("story-1", "characters", "char-2", "concept.png"))
}
