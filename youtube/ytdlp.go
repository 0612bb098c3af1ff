// Package youtube talks to YouTube through the yt-dlp extraction tool and
// the Data API. It provides the extraction tier of the resolution pipeline
// plus metadata probing, format listing, playlist enumeration, and search.
package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultYtdlpPath    = "yt-dlp"
	defaultYtdlpTimeout = 2 * time.Minute
)

// ErrTimeout indicates the extraction tool exceeded its wall-clock budget
// and was killed.
var ErrTimeout = errors.New("yt-dlp timed out")

// Runner invokes yt-dlp as a subprocess with a bounded wall-clock timeout.
// On timeout the subprocess is forcibly terminated.
type Runner struct {
	// Path is the yt-dlp executable. Defaults to "yt-dlp" from PATH.
	Path string

	// CookiesPath points at a Netscape-format cookie file. It is only
	// passed to yt-dlp when the file exists and is non-empty.
	CookiesPath string

	// Timeout bounds each invocation. Defaults to 2 minutes.
	Timeout time.Duration
}

func (r *Runner) path() string {
	if r.Path != "" {
		return r.Path
	}
	return defaultYtdlpPath
}

func (r *Runner) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return defaultYtdlpTimeout
}

// CookiesAvailable reports whether a usable cookie file is configured.
func (r *Runner) CookiesAvailable() bool {
	if r.CookiesPath == "" {
		return false
	}
	info, err := os.Stat(r.CookiesPath)
	return err == nil && info.Size() > 0
}

// cookieArgs returns the --cookies arguments, or nil when no usable cookie
// file is configured.
func (r *Runner) cookieArgs() []string {
	if !r.CookiesAvailable() {
		return nil
	}
	return []string{"--cookies", r.CookiesPath}
}

// Run executes yt-dlp with the given arguments, prefixed by the cookie
// arguments when available, and returns its stdout.
func (r *Runner) Run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	full := append(r.cookieArgs(), args...)
	cmd := exec.CommandContext(ctx, r.path(), full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %v", ErrTimeout, r.timeout())
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return stdout.Bytes(), fmt.Errorf("yt-dlp: %w: %s", err, firstLine(msg))
		}
		return stdout.Bytes(), fmt.Errorf("yt-dlp: %w", err)
	}
	return stdout.Bytes(), nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
