package upstream

import (
	"context"
	"errors"
	"sync/atomic"
	"telehealth-service/internal/pkg/constvars"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubChecker struct {
	err   error
	calls atomic.Int32
}

func (s *stubChecker) CheckUpstream(ctx context.Context) error {
	s.calls.Add(1)
	return s.err
}

func TestLastStatusBeforeFirstProbe(t *testing.T) {
	w := NewWorker(zap.NewNop(), &stubChecker{}, "@every 1m")
	assert.Equal(t, constvars.UpstreamStatusUnknown, w.LastStatus().Status)
}

func TestRunOnceRecordsResult(t *testing.T) {
	checker := &stubChecker{}
	w := NewWorker(zap.NewNop(), checker, "@every 1m")

	w.runOnce(context.Background())
	status := w.LastStatus()
	assert.Equal(t, constvars.UpstreamStatusUp, status.Status)
	assert.Empty(t, status.Error)
	assert.False(t, status.CheckedAt.IsZero())

	checker.err = errors.New("connection refused")
	w.runOnce(context.Background())
	status = w.LastStatus()
	assert.Equal(t, constvars.UpstreamStatusDown, status.Status)
	assert.Equal(t, "connection refused", status.Error)
}

func TestLastStatusReturnsCopy(t *testing.T) {
	w := NewWorker(zap.NewNop(), &stubChecker{}, "@every 1m")
	w.LastStatus().Status = "tampered"
	assert.Equal(t, constvars.UpstreamStatusUnknown, w.LastStatus().Status)
}

func TestStartProbesImmediatelyAndStops(t *testing.T) {
	checker := &stubChecker{}
	w := NewWorker(zap.NewNop(), checker, "not a cron spec")

	w.Start(context.Background())
	assert.Eventually(t, func() bool {
		return w.LastStatus().Status == constvars.UpstreamStatusUp
	}, time.Second, 10*time.Millisecond)
	w.Stop()

	assert.GreaterOrEqual(t, checker.calls.Load(), int32(1))
}
