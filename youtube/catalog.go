package youtube

import (
	"context"
	"fmt"

	"mediafetch/media"
)

// Track is display metadata for one video.
type Track struct {
	Title     string
	Link      string
	VideoID   string
	Duration  string
	Seconds   int
	Thumbnail string
}

// Catalog answers metadata questions, searching first and falling back to a
// yt-dlp probe when search yields nothing.
type Catalog struct {
	Searcher Searcher
	Runner   *Runner
}

// Details resolves a query, bare id, or link to track metadata.
func (c *Catalog) Details(ctx context.Context, q string) (*Track, error) {
	if !media.IsLink(q) && c.Searcher != nil {
		results, err := c.Searcher.Search(ctx, q, 1)
		if err == nil && len(results) > 0 {
			r := results[0]
			return &Track{
				Title:     r.Title,
				Link:      media.Ref{ID: r.ID}.WatchURL(),
				VideoID:   r.ID,
				Duration:  r.Duration,
				Seconds:   r.Seconds,
				Thumbnail: r.Thumbnail,
			}, nil
		}
	}

	link := q
	if !media.IsLink(q) {
		link = media.Ref{ID: media.ExtractID(q)}.WatchURL()
	}
	info, err := c.Runner.DumpJSON(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("details %q: %w", q, err)
	}
	return &Track{
		Title:     info.Title,
		Link:      info.WebpageURL,
		VideoID:   info.ID,
		Duration:  formatDuration(info.Duration),
		Seconds:   info.Duration,
		Thumbnail: info.Thumbnail,
	}, nil
}
