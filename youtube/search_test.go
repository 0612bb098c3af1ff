package youtube

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	results []SearchResult
	err     error
	calls   int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]SearchResult, error) {
	f.calls++
	return f.results, f.err
}

func TestCachedSearcherHitSkipsInner(t *testing.T) {
	inner := &fakeSearcher{results: []SearchResult{{ID: "dQw4w9WgXcQ", Title: "hit"}}}
	s := NewCachedSearcher(inner, time.Minute, 16)

	for i := 0; i < 3; i++ {
		results, err := s.Search(context.Background(), "never gonna", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "dQw4w9WgXcQ", results[0].ID)
	}
	assert.Equal(t, 1, inner.calls)
}

func TestCachedSearcherDistinctQueries(t *testing.T) {
	inner := &fakeSearcher{results: []SearchResult{{ID: "dQw4w9WgXcQ"}}}
	s := NewCachedSearcher(inner, time.Minute, 16)

	_, err := s.Search(context.Background(), "first", 1)
	require.NoError(t, err)
	_, err = s.Search(context.Background(), "second", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSearcherDoesNotCacheEmpty(t *testing.T) {
	inner := &fakeSearcher{}
	s := NewCachedSearcher(inner, time.Minute, 16)

	results, err := s.Search(context.Background(), "obscure", 1)
	require.NoError(t, err)
	assert.Empty(t, results)

	// The miss was not cached; a later search reaches the inner searcher
	// again and picks up results that have since appeared.
	inner.results = []SearchResult{{ID: "dQw4w9WgXcQ"}}
	results, err = s.Search(context.Background(), "obscure", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSearcherPropagatesErrors(t *testing.T) {
	inner := &fakeSearcher{err: errors.New("quota exceeded")}
	s := NewCachedSearcher(inner, time.Minute, 16)

	_, err := s.Search(context.Background(), "anything", 1)
	require.Error(t, err)

	_, err = s.Search(context.Background(), "anything", 1)
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT3M20S", 200},
		{"PT1H2M3S", 3723},
		{"PT45S", 45},
		{"PT2H", 7200},
		{"PT0S", 0},
		{"P1DT2H", 0},
		{"garbage", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseISODuration(tt.in), "input %q", tt.in)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{200, "3:20"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3723, "1:02:03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in), "input %d", tt.in)
	}
}

func TestCatalogDetailsPrefersSearch(t *testing.T) {
	inner := &fakeSearcher{results: []SearchResult{{
		ID:       "dQw4w9WgXcQ",
		Title:    "Never Gonna Give You Up",
		Duration: "3:32",
		Seconds:  212,
	}}}
	c := &Catalog{Searcher: inner, Runner: &Runner{Path: "/nonexistent"}}

	track, err := c.Details(context.Background(), "never gonna give you up")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", track.VideoID)
	assert.Equal(t, "Never Gonna Give You Up", track.Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", track.Link)
	assert.Equal(t, 212, track.Seconds)
}

func TestCatalogDetailsFallsBackToProbe(t *testing.T) {
	script := `cat <<'EOF'
{"id":"dQw4w9WgXcQ","title":"Probed Title","duration":212,"webpage_url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}
EOF
`
	c := &Catalog{
		Searcher: &fakeSearcher{},
		Runner:   &Runner{Path: writeFakeYtdlp(t, script)},
	}

	track, err := c.Details(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Probed Title", track.Title)
	assert.Equal(t, "3:32", track.Duration)
}
