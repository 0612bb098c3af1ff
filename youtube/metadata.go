package youtube

import (
	"context"
	"encoding/json"
	"fmt"
)

// Info is the subset of yt-dlp's --dump-json output the pipeline uses.
type Info struct {
	// ID is the video id (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`
	// Title is the video title.
	Title string `json:"title"`
	// Duration is the video length in seconds.
	Duration int `json:"duration"`
	// Thumbnail is the URL of the best available thumbnail.
	Thumbnail string `json:"thumbnail"`
	// WebpageURL is the canonical watch URL.
	WebpageURL string `json:"webpage_url"`
	// IsLive reports whether this is a currently running live stream.
	IsLive bool `json:"is_live"`
	// Formats lists the available download formats.
	Formats []rawFormat `json:"formats"`
}

// rawFormat mirrors one entry of yt-dlp's formats array.
type rawFormat struct {
	Format         string `json:"format"`
	FormatID       string `json:"format_id"`
	FormatNote     string `json:"format_note"`
	Ext            string `json:"ext"`
	Filesize       int64  `json:"filesize"`
	FilesizeApprox int64  `json:"filesize_approx"`
}

// DumpJSON probes link with yt-dlp and parses the JSON metadata.
func (r *Runner) DumpJSON(ctx context.Context, link string) (*Info, error) {
	out, err := r.Run(ctx, "--dump-json", "--no-warnings", link)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", link, err)
	}
	info := &Info{}
	if err := json.Unmarshal(out, info); err != nil {
		return nil, fmt.Errorf("probe %s: parse metadata: %w", link, err)
	}
	return info, nil
}

// IsLive reports whether link points at a running live stream. Probe
// failures are reported as not live.
func (r *Runner) IsLive(ctx context.Context, link string) bool {
	info, err := r.DumpJSON(ctx, link)
	return err == nil && info.IsLive
}
