package upstream

import (
	"context"
	"sync"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultCronSpec = "@every 1m"
	probeTimeout    = 10 * time.Second
)

// Worker probes the FHIR server on a cron schedule and keeps the last result.
type Worker struct {
	log     *zap.Logger
	checker contracts.UpstreamChecker
	spec    string
	now     func() time.Time

	mu   sync.RWMutex
	last *models.UpstreamStatus

	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
}

func NewWorker(log *zap.Logger, checker contracts.UpstreamChecker, cronSpec string) *Worker {
	return &Worker{
		log:     log,
		checker: checker,
		spec:    cronSpec,
		now:     time.Now,
		last:    &models.UpstreamStatus{Status: constvars.UpstreamStatusUnknown},
	}
}

// Start probes once immediately, then on every tick of the cron spec.
func (w *Worker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New()
	_, err := c.AddFunc(w.spec, func() { w.runOnce(w.runCtx) })
	if err != nil {
		w.log.Warn("upstream.worker: invalid cron spec; falling back to default",
			zap.String("spec", w.spec),
			zap.Error(err),
		)
		c = cron.New()
		_, _ = c.AddFunc(defaultCronSpec, func() { w.runOnce(w.runCtx) })
	}
	c.Start()
	w.cron = c

	go w.runOnce(w.runCtx)
}

func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		ctx := w.cron.Stop()
		<-ctx.Done()
	}
}

func (w *Worker) LastStatus() *models.UpstreamStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	status := *w.last
	return &status
}

func (w *Worker) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := w.now()
	err := w.checker.CheckUpstream(ctx)
	status := &models.UpstreamStatus{
		Status:    constvars.UpstreamStatusUp,
		CheckedAt: w.now(),
		Latency:   w.now().Sub(start),
	}
	if err != nil {
		status.Status = constvars.UpstreamStatusDown
		status.Error = err.Error()
		w.log.Warn("upstream.worker: FHIR server probe failed", zap.Error(err))
	}

	w.mu.Lock()
	w.last = status
	w.mu.Unlock()
}
