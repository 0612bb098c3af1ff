package resolve

import (
	"context"
	"errors"

	"mediafetch/api"
	"mediafetch/youtube"
)

// ErrNotFound is returned when every tier has been exhausted without
// producing a file.
var ErrNotFound = errors.New("media not found")

// outcome classifies a tier failure for the fall-through logic.
type outcome int

const (
	// outcomeMiss: the tier determined it cannot serve this request.
	// Not an error, a fall-through signal.
	outcomeMiss outcome = iota
	// outcomeTransient: the tier failed in a way the next tier may not.
	outcomeTransient
	// outcomeFatal: the request itself is dead; stop the chain.
	outcomeFatal
)

// classify maps a tier error onto the closed outcome enum. Cancellation or
// expiry of the context driving the whole chain is fatal; per-call timeouts
// inside a tier are only transient.
func classify(ctx context.Context, err error) outcome {
	if ctx.Err() != nil {
		return outcomeFatal
	}
	switch {
	case errors.Is(err, youtube.ErrNoCookies),
		errors.Is(err, api.ErrNoToken),
		errors.Is(err, api.ErrCircuitOpen):
		return outcomeMiss
	}
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
		return outcomeMiss
	}
	return outcomeTransient
}
