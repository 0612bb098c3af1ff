package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"mediafetch/media"
)

// Quality profiles per kind. Audio prefers opus in a webm container; video
// is capped at 720p/1280 to bound file size and transfer time.
const (
	audioFormat = "bestaudio[ext=webm][acodec=opus]"
	videoFormat = "best[height<=?720][width<=?1280]"
)

// ErrNoCookies indicates the extraction tier is not applicable because no
// usable cookie file is configured. It is a fall-through signal, not a
// failure.
var ErrNoCookies = errors.New("no cookie file configured")

// Downloader is the extraction tier: it pulls media bytes directly from the
// source via yt-dlp. It only attempts anything when cookies are available.
type Downloader struct {
	Runner *Runner
	log    *logrus.Entry
}

// NewDownloader builds a Downloader around the given runner.
func NewDownloader(runner *Runner, logger *logrus.Logger) *Downloader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Downloader{
		Runner: runner,
		log:    logger.WithField("tier", "extractor"),
	}
}

// Name identifies the tier in logs.
func (d *Downloader) Name() string { return "extractor" }

func formatFor(kind media.Kind) string {
	if kind == media.KindVideo {
		return videoFormat
	}
	return audioFormat
}

// Fetch downloads ref to dest. Success is defined as: the process exited and
// dest exists with non-zero size. Anything else is failure; the external
// tool's failure surface is not fully enumerable, so its error modes are not
// distinguished.
func (d *Downloader) Fetch(ctx context.Context, ref media.Ref, dest string) error {
	if !d.Runner.CookiesAvailable() {
		return ErrNoCookies
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	d.log.WithFields(logrus.Fields{"video_id": ref.ID, "kind": ref.Kind}).Info("downloading with cookies")

	_, runErr := d.Runner.Run(ctx,
		"-f", formatFor(ref.Kind),
		"-o", dest,
		ref.WatchURL(),
	)

	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		return nil
	}
	if runErr != nil {
		return fmt.Errorf("extract %s: %w", ref.ID, runErr)
	}
	return fmt.Errorf("extract %s: no output file produced", ref.ID)
}
