package youtube

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterFormats(t *testing.T) {
	raw := []rawFormat{
		{Format: "18 - 640x360 (360p)", FormatID: "18", FormatNote: "360p", Ext: "mp4", Filesize: 1 << 20},
		{Format: "137 - 1920x1080 (1080p, DASH video)", FormatID: "137", FormatNote: "1080p", Ext: "mp4", Filesize: 5 << 20},
		{Format: "22 - 1280x720 (720p)", FormatID: "22", FormatNote: "720p", Ext: "mp4"},
		{Format: "251 - audio only", FormatID: "251", Ext: "webm", Filesize: 3 << 20},
		{Format: "250 - audio only (low)", FormatID: "250", FormatNote: "low", Ext: "webm", FilesizeApprox: 2 << 20},
	}

	out := filterFormats(raw, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.Len(t, out, 2)

	// "18" passes as-is; "250" falls back to the approximate size. The DASH
	// entry, the sizeless entry, and the one missing a note are all dropped.
	assert.Equal(t, "18", out[0].FormatID)
	assert.Equal(t, int64(1<<20), out[0].Filesize)
	assert.Equal(t, "250", out[1].FormatID)
	assert.Equal(t, int64(2<<20), out[1].Filesize)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", out[1].URL)
}

const formatsScript = `cat <<'EOF'
{"id":"dQw4w9WgXcQ","title":"t","formats":[
  {"format":"18 - 640x360 (360p)","format_id":"18","format_note":"360p","ext":"mp4","filesize":1048576}
]}
EOF
`

func TestFormatListerCachesListings(t *testing.T) {
	runner := &Runner{Path: writeFakeYtdlp(t, formatsScript)}
	lister := NewFormatLister(runner, time.Minute, 16)

	link := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	formats, got, err := lister.List(context.Background(), link)
	require.NoError(t, err)
	require.Len(t, formats, 1)
	assert.Equal(t, link, got)

	// Swap in a failing probe. A cache hit never reaches the runner.
	runner.Path = writeFakeYtdlp(t, "exit 1\n")
	formats, _, err = lister.List(context.Background(), link)
	require.NoError(t, err)
	assert.Len(t, formats, 1)
}

func TestFormatListerCachesEmptyListings(t *testing.T) {
	runner := &Runner{Path: writeFakeYtdlp(t, "exit 1\n")}
	lister := NewFormatLister(runner, time.Minute, 16)

	link := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	formats, _, err := lister.List(context.Background(), link)
	require.Error(t, err)
	assert.Empty(t, formats)

	// Even a working probe is skipped now: the empty listing is cached.
	runner.Path = writeFakeYtdlp(t, formatsScript)
	formats, _, err = lister.List(context.Background(), link)
	require.NoError(t, err)
	assert.Empty(t, formats)
}
