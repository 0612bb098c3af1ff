package resolve

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mediafetch/media"
	"mediafetch/retry"
	"mediafetch/store"
)

// populateTimeout bounds one background upload end to end.
const populateTimeout = 10 * time.Minute

// Populator parks freshly downloaded files in the durable store and records
// the issued token, so future requests skip the download tiers entirely.
// It is strictly a best-effort side channel: the primary request has already
// completed by the time it runs, and every failure is logged and swallowed.
type Populator struct {
	durable store.DurableStore
	fileIDs store.FileIDStore
	policy  retry.Policy
	log     *logrus.Entry
	wg      sync.WaitGroup
}

// NewPopulator creates a populator writing through durable into fileIDs.
func NewPopulator(durable store.DurableStore, fileIDs store.FileIDStore, policy retry.Policy, logger *logrus.Logger) *Populator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Populator{
		durable: durable,
		fileIDs: fileIDs,
		policy:  policy,
		log:     logger.WithField("component", "populator"),
	}
}

// Schedule starts the upload in the background and returns immediately;
// the caller responds to its request without waiting.
func (p *Populator) Schedule(ref media.Ref, localPath string) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.populate(ref, localPath)
	}()
}

func (p *Populator) populate(ref media.Ref, localPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), populateTimeout)
	defer cancel()

	log := p.log.WithFields(logrus.Fields{"video_id": ref.ID, "kind": ref.Kind})
	log.Info("uploading to durable store in background")

	result, err := retry.Call(ctx, p.policy, func(ctx context.Context) (store.UploadResult, error) {
		return p.durable.Upload(ctx, ref.Kind, localPath)
	})
	if err != nil {
		log.WithError(err).Warn("durable upload failed")
		return
	}

	token := result.Token()
	if token == "" {
		log.Warn("durable store issued no token")
		return
	}

	p.fileIDs.PutToken(ctx, ref, token)
	log.Info("cached durable-store token")
}

// Wait blocks until every scheduled upload has finished.
func (p *Populator) Wait() {
	p.wg.Wait()
}
