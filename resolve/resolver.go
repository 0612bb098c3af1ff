// Package resolve orchestrates the tiered media-resolution pipeline: local
// disk, then the durable store via a cached token, then direct extraction,
// then the fallback download service. Successful downloads are parked in the
// durable store in the background for future requests.
package resolve

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"mediafetch/media"
	"mediafetch/retry"
	"mediafetch/store"
)

// Tier is one strategy in the cost-ordered fallback chain for obtaining
// media bytes at dest.
type Tier interface {
	Name() string
	Fetch(ctx context.Context, ref media.Ref, dest string) error
}

// Options configures a Resolver. FileIDs, Durable and Extractor are
// optional; a nil collaborator simply disables its tier.
type Options struct {
	// Dir is where resolved files are placed.
	Dir string

	// FileIDs maps references to durable-store tokens.
	FileIDs store.FileIDStore
	// Durable is the store tokens point into.
	Durable store.DurableStore

	// Extractor is the direct-extraction tier.
	Extractor Tier
	// Remote is the fallback download service, consulted last.
	Remote Tier

	// Retry applies to durable-store fetches and uploads.
	Retry retry.Policy

	Logger *logrus.Logger
}

// Resolver is the single entry point the surrounding bot layer calls.
// It is safe for concurrent use; concurrent requests for the same
// (id, kind) pair share one in-flight resolution.
type Resolver struct {
	dir       string
	fileIDs   store.FileIDStore
	durable   store.DurableStore
	extractor Tier
	remote    Tier
	policy    retry.Policy
	populator *Populator
	group     singleflight.Group
	log       *logrus.Entry
}

// New creates a Resolver from opts.
func New(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	r := &Resolver{
		dir:       opts.Dir,
		fileIDs:   opts.FileIDs,
		durable:   opts.Durable,
		extractor: opts.Extractor,
		remote:    opts.Remote,
		policy:    opts.Retry,
		log:       logger.WithField("component", "resolver"),
	}
	if opts.Durable != nil && opts.FileIDs != nil {
		r.populator = NewPopulator(opts.Durable, opts.FileIDs, opts.Retry, logger)
	}
	return r
}

// resolveTimeout bounds one shared tier-chain walk end to end.
const resolveTimeout = 15 * time.Minute

// Resolve produces a local, playable file for ref. It returns ErrNotFound
// when every tier has been exhausted, and media.ErrInvalidID for ids too
// short to resolve, before any tier is attempted.
func (r *Resolver) Resolve(ctx context.Context, ref media.Ref) (*media.ResolvedFile, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	// The shared work runs detached from any one caller's context: the
	// first caller cancelling must not fail the coalesced waiters. Each
	// caller still honors its own cancellation below.
	ch := r.group.DoChan(ref.Key(), func() (interface{}, error) {
		workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()
		return r.resolve(workCtx, ref)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*media.ResolvedFile), nil
	}
}

// resolve walks the tier chain strictly in cost order. Tier failures are
// converted to fall-through; only expiry of the shared work context
// propagates.
func (r *Resolver) resolve(ctx context.Context, ref media.Ref) (*media.ResolvedFile, error) {
	dest := ref.LocalPath(r.dir)
	log := r.log.WithFields(logrus.Fields{"video_id": ref.ID, "kind": ref.Kind})

	// Tier 1: a pre-existing file at the canonical path is valid as-is;
	// content is assumed immutable once named.
	if fileReady(dest) {
		return &media.ResolvedFile{LocalPath: dest, Ref: ref}, nil
	}

	// Tier 2: durable store via cached token.
	if r.fileIDs != nil && r.durable != nil {
		if token, ok := r.fileIDs.GetToken(ctx, ref); ok {
			log.Info("found cached token, fetching from durable store")
			err := retry.Do(ctx, r.policy, func(ctx context.Context) error {
				return r.durable.Fetch(ctx, token, dest)
			})
			if err == nil && fileReady(dest) {
				log.Info("resolved from durable store")
				return &media.ResolvedFile{LocalPath: dest, Ref: ref}, nil
			}
			if classify(ctx, err) == outcomeFatal {
				return nil, err
			}
			// The token is not invalidated; staleness only affects
			// this request.
			log.WithError(err).Warn("durable fetch failed, trying fresh download")
		}
	}

	// Tier 3: direct extraction.
	if r.extractor != nil {
		err := r.extractor.Fetch(ctx, ref, dest)
		switch {
		case err == nil && fileReady(dest):
			log.Info("resolved via extractor")
			r.schedulePopulate(ref, dest)
			return &media.ResolvedFile{LocalPath: dest, Ref: ref}, nil
		case classify(ctx, err) == outcomeFatal:
			return nil, err
		case classify(ctx, err) == outcomeMiss:
			log.Debug("extractor not applicable")
		default:
			log.WithError(err).Warn("extractor failed, trying fallback api")
		}
	}

	// Tier 4: fallback download service. Failure here is terminal.
	if r.remote != nil {
		err := r.remote.Fetch(ctx, ref, dest)
		if err == nil && fileReady(dest) {
			log.Info("resolved via fallback api")
			r.schedulePopulate(ref, dest)
			return &media.ResolvedFile{LocalPath: dest, Ref: ref}, nil
		}
		if classify(ctx, err) == outcomeFatal {
			return nil, err
		}
		log.WithError(err).Warn("fallback api failed")
	}

	return nil, ErrNotFound
}

func (r *Resolver) schedulePopulate(ref media.Ref, path string) {
	if r.populator != nil {
		r.populator.Schedule(ref, path)
	}
}

// Wait blocks until all scheduled cache-population uploads have finished.
// Intended for shutdown.
func (r *Resolver) Wait() {
	if r.populator != nil {
		r.populator.Wait()
	}
}

// fileReady reports whether dest exists with non-zero size. A zero-size or
// missing file after a tier completes is tier failure, not success.
func fileReady(dest string) bool {
	info, err := os.Stat(dest)
	return err == nil && info.Size() > 0
}
