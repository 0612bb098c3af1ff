package store

import (
	"context"

	"mediafetch/media"
)

// UploadResult carries the storage tokens a durable store reports back after
// an upload. Depending on how the store classified the content, the token may
// come back on the audio, video, or generic document field.
type UploadResult struct {
	AudioToken    string
	VideoToken    string
	DocumentToken string
}

// Token returns the token to record, preferring audio, then video, then
// document. Empty when the upload produced no usable handle.
func (r UploadResult) Token() string {
	switch {
	case r.AudioToken != "":
		return r.AudioToken
	case r.VideoToken != "":
		return r.VideoToken
	default:
		return r.DocumentToken
	}
}

// DurableStore is the long-lived remote store media is parked in after a
// successful download. In the original deployment this is the chat platform's
// attachment storage; any store that can upload a local file by kind and
// later stream it back by token will do.
type DurableStore interface {
	// Upload stores the file at localPath, classified by kind, and
	// returns the tokens the store issued for it.
	Upload(ctx context.Context, kind media.Kind, localPath string) (UploadResult, error)

	// Fetch writes the content previously stored under token to localPath.
	Fetch(ctx context.Context, token string, localPath string) error
}
