package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"mediafetch/cache"
)

// SearchResult is one video returned by a metadata search.
type SearchResult struct {
	ID        string
	Title     string
	Duration  string // "m:ss" display form; empty when unknown
	Seconds   int
	Thumbnail string
}

// Searcher finds the best-matching videos for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// DataAPISearcher implements Searcher with the YouTube Data API v3.
type DataAPISearcher struct {
	service *ytapi.Service
}

// NewDataAPISearcher creates a Data API backed searcher.
func NewDataAPISearcher(ctx context.Context, apiKey string) (*DataAPISearcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	service, err := ytapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &DataAPISearcher{service: service}, nil
}

// Search returns up to limit matching videos with duration details filled in
// from a follow-up videos.list call.
func (s *DataAPISearcher) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	resp, err := s.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var ids []string
	results := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		r := SearchResult{ID: item.Id.VideoId}
		if item.Snippet != nil {
			r.Title = item.Snippet.Title
			if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
				r.Thumbnail = item.Snippet.Thumbnails.High.Url
			}
		}
		results = append(results, r)
		ids = append(ids, r.ID)
	}
	if len(ids) == 0 {
		return results, nil
	}

	details, err := s.service.Videos.List([]string{"contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		// Durations are decoration; the ids already answer the search.
		return results, nil
	}
	durations := make(map[string]int, len(details.Items))
	for _, item := range details.Items {
		if item.ContentDetails != nil {
			durations[item.Id] = parseISODuration(item.ContentDetails.Duration)
		}
	}
	for i := range results {
		if secs, ok := durations[results[i].ID]; ok {
			results[i].Seconds = secs
			results[i].Duration = formatDuration(secs)
		}
	}
	return results, nil
}

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts an ISO 8601 duration like "PT3M20S" to seconds.
// Unparseable input yields 0.
func parseISODuration(s string) int {
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	return h*3600 + min*60 + sec
}

// formatDuration renders seconds as "h:mm:ss" or "m:ss".
func formatDuration(secs int) string {
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// CachedSearcher fronts a Searcher with a bounded TTL cache. Empty result
// sets are never cached, so transient search outages do not stick.
type CachedSearcher struct {
	inner Searcher
	cache *cache.Cache[[]SearchResult]
}

// NewCachedSearcher wraps inner with a cache of at most maxEntries query
// results, each fresh for ttl.
func NewCachedSearcher(inner Searcher, ttl time.Duration, maxEntries int) *CachedSearcher {
	return &CachedSearcher{
		inner: inner,
		cache: cache.New[[]SearchResult](ttl, maxEntries),
	}
}

// Search returns the cached results for query if fresh, otherwise asks the
// inner searcher and caches any non-empty result.
func (c *CachedSearcher) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	key := "q:" + query
	if results, ok := c.cache.Get(key); ok {
		return results, nil
	}

	results, err := c.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		c.cache.Put(key, results)
	}
	return results, nil
}
