package youtube

import (
	"context"
	"strconv"
	"strings"
)

// PlaylistIDs enumerates up to limit video ids from a playlist link without
// downloading anything. Unavailable entries are skipped.
func (r *Runner) PlaylistIDs(ctx context.Context, link string, limit int) ([]string, error) {
	out, err := r.Run(ctx,
		"-i",
		"--get-id",
		"--flat-playlist",
		"--playlist-end", strconv.Itoa(limit),
		"--skip-download",
		link,
	)
	if err != nil && len(out) == 0 {
		return nil, err
	}

	var ids []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			ids = append(ids, line)
		}
	}
	return ids, nil
}
