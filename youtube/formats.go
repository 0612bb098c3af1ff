package youtube

import (
	"context"
	"strings"
	"time"

	"mediafetch/cache"
)

// Format describes one downloadable rendition of a video. Only non-DASH
// formats with a known size are listed.
type Format struct {
	Format     string
	FormatID   string
	FormatNote string
	Ext        string
	Filesize   int64
	// URL is the watch link the listing was resolved against.
	URL string
}

// formatListing is what the format cache stores: the filtered formats tagged
// with the link they were resolved for.
type formatListing struct {
	formats []Format
	link    string
}

// FormatLister lists downloadable formats for a link, caching listings by
// link with a TTL.
type FormatLister struct {
	runner *Runner
	cache  *cache.Cache[formatListing]
}

// NewFormatLister builds a lister backed by the given runner. Listings stay
// cached for ttl; the cache holds at most maxEntries listings.
func NewFormatLister(runner *Runner, ttl time.Duration, maxEntries int) *FormatLister {
	return &FormatLister{
		runner: runner,
		cache:  cache.New[formatListing](ttl, maxEntries),
	}
}

// List returns the usable formats for link together with the link they were
// resolved against. Listings are cached; a probe failure yields an empty
// listing, which is cached as well.
func (l *FormatLister) List(ctx context.Context, link string) ([]Format, string, error) {
	key := "f:" + link
	if listing, ok := l.cache.Get(key); ok {
		return listing.formats, listing.link, nil
	}

	var out []Format
	info, err := l.runner.DumpJSON(ctx, link)
	if err == nil {
		out = filterFormats(info.Formats, link)
	}

	l.cache.Put(key, formatListing{formats: out, link: link})
	return out, link, err
}

// filterFormats drops DASH entries and anything without complete descriptor
// fields or a size.
func filterFormats(raw []rawFormat, link string) []Format {
	var out []Format
	for _, f := range raw {
		if strings.Contains(strings.ToLower(f.Format), "dash") {
			continue
		}
		if f.Format == "" || f.FormatID == "" || f.Ext == "" || f.FormatNote == "" {
			continue
		}
		size := f.Filesize
		if size == 0 {
			size = f.FilesizeApprox
		}
		if size == 0 {
			continue
		}
		out = append(out, Format{
			Format:     f.Format,
			FormatID:   f.FormatID,
			FormatNote: f.FormatNote,
			Ext:        f.Ext,
			Filesize:   size,
			URL:        link,
		})
	}
	return out
}
