package media

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare id",
			input: "dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "watch url",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "watch url with extra params",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123&t=42",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "short link",
			input: "https://youtu.be/dQw4w9WgXcQ?si=abcdef",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "shorts url",
			input: "https://www.youtube.com/shorts/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "live url",
			input: "https://www.youtube.com/live/dQw4w9WgXcQ?feature=share",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "id with trailing params",
			input: "dQw4w9WgXcQ&list=PL123",
			want:  "dQw4w9WgXcQ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractID(tt.input))
		})
	}
}

func TestRefValidate(t *testing.T) {
	tests := []struct {
		name    string
		ref     Ref
		wantErr bool
	}{
		{name: "canonical id", ref: Ref{ID: "dQw4w9WgXcQ", Kind: KindAudio}},
		{name: "short external id", ref: Ref{ID: "abc", Kind: KindVideo}},
		{name: "too short", ref: Ref{ID: "ab", Kind: KindAudio}, wantErr: true},
		{name: "empty", ref: Ref{ID: "", Kind: KindAudio}, wantErr: true},
		{name: "unknown kind", ref: Ref{ID: "dQw4w9WgXcQ", Kind: Kind("gif")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidID)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRefLocalPath(t *testing.T) {
	audio := Ref{ID: "dQw4w9WgXcQ", Kind: KindAudio}
	video := Ref{ID: "dQw4w9WgXcQ", Kind: KindVideo}

	assert.Equal(t, filepath.Join("downloads", "dQw4w9WgXcQ.mp3"), audio.LocalPath("downloads"))
	assert.Equal(t, filepath.Join("downloads", "dQw4w9WgXcQ.mp4"), video.LocalPath("downloads"))
}

func TestRefKey(t *testing.T) {
	assert.Equal(t, "abc123:audio", Ref{ID: "abc123", Kind: KindAudio}.Key())
	assert.NotEqual(t,
		Ref{ID: "abc123", Kind: KindAudio}.Key(),
		Ref{ID: "abc123", Kind: KindVideo}.Key(),
	)
}

func TestIsCanonicalID(t *testing.T) {
	assert.True(t, Ref{ID: "dQw4w9WgXcQ"}.IsCanonicalID())
	assert.False(t, Ref{ID: "abc"}.IsCanonicalID())
	assert.False(t, Ref{ID: "dQw4w9WgXcQ123"}.IsCanonicalID())
}
