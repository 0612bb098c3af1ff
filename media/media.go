// Package media defines the identifiers and file handles the resolution
// pipeline operates on.
package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind distinguishes audio from video media.
type Kind string

const (
	// KindAudio selects the audio rendition of a media item.
	KindAudio Kind = "audio"
	// KindVideo selects the video rendition of a media item.
	KindVideo Kind = "video"
)

// Ext returns the container extension used for local files of this kind.
func (k Kind) Ext() string {
	if k == KindVideo {
		return ".mp4"
	}
	return ".mp3"
}

// minIDLength is the shortest identifier accepted before any tier is
// consulted. Canonical YouTube ids are 11 characters, but shorter external
// ids occur for some sources; anything under this length is rejected outright.
const minIDLength = 3

// idPattern matches a canonical 11-character YouTube video id.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ErrInvalidID indicates a media identifier too short or malformed to resolve.
var ErrInvalidID = errors.New("invalid media id")

// Ref identifies one unit of media. Uniqueness is per (ID, Kind) pair.
// A Ref is immutable once constructed.
type Ref struct {
	ID   string
	Kind Kind
}

// NewRef builds a Ref from a raw id or link and a kind. The input may be a
// bare video id, a watch URL, a youtu.be short link, or a shorts/live URL.
func NewRef(idOrLink string, kind Kind) Ref {
	return Ref{ID: ExtractID(idOrLink), Kind: kind}
}

// Validate reports whether the reference can be resolved at all.
// It is checked before any network or subprocess work.
func (r Ref) Validate() error {
	if len(r.ID) < minIDLength {
		return fmt.Errorf("%w: %q", ErrInvalidID, r.ID)
	}
	if r.Kind != KindAudio && r.Kind != KindVideo {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidID, r.Kind)
	}
	return nil
}

// IsCanonicalID reports whether the id is a canonical 11-character video id.
func (r Ref) IsCanonicalID() bool {
	return idPattern.MatchString(r.ID)
}

// Key returns the string the pipeline keys caches and single-flight
// coordination on.
func (r Ref) Key() string {
	return r.ID + ":" + string(r.Kind)
}

// LocalPath returns the canonical on-disk location for this reference under
// dir. Content at that path is assumed immutable once named.
func (r Ref) LocalPath(dir string) string {
	return filepath.Join(dir, r.ID+r.Kind.Ext())
}

// WatchURL returns the canonical source URL for the reference.
func (r Ref) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + r.ID
}

// ResolvedFile is the result of a successful resolution. Ownership of the
// file at LocalPath transfers to the caller; the pipeline never deletes a
// file it has produced.
type ResolvedFile struct {
	LocalPath string
	Ref       Ref
}

// ExtractID normalizes a raw id or any supported YouTube link shape down to
// the bare video id. Query parameters after the first "&" are dropped.
func ExtractID(link string) string {
	link = strings.TrimSpace(link)

	if strings.Contains(link, "v=") {
		part := link[strings.Index(link, "v=")+2:]
		return strings.SplitN(part, "&", 2)[0]
	}
	for _, marker := range []string{"youtu.be/", "/shorts/", "/live/"} {
		if idx := strings.Index(link, marker); idx >= 0 {
			part := link[idx+len(marker):]
			part = strings.SplitN(part, "?", 2)[0]
			return strings.SplitN(part, "&", 2)[0]
		}
	}
	return strings.SplitN(link, "&", 2)[0]
}

// IsLink reports whether the input looks like a YouTube URL rather than a
// bare id or free-text query.
func IsLink(s string) bool {
	return strings.Contains(s, "youtube.com") || strings.Contains(s, "youtu.be")
}
