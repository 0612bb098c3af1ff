package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mediafetch/media"
)

func TestNeedsSearch(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want bool
	}{
		{"canonical id", "dQw4w9WgXcQ", false},
		{"watch link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", false},
		{"free-text query", "never gonna give you up", true},
		{"non-canonical token", "abc123", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := media.NewRef(tt.arg, media.KindAudio)
			assert.Equal(t, tt.want, needsSearch(tt.arg, ref))
		})
	}
}
