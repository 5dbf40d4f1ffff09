package review

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/internal/metrics"
)

const sideCallTimeout = 30 * time.Second

// SideCall is one best-effort fan-out step after a review decision. Side
// calls never affect the decision itself: every failure, including a
// panic, is logged and counted, then the next call runs.
type SideCall struct {
	Name string
	Run  func(ctx context.Context) error
}

func (s *reviewService) runSideCalls(ctx context.Context, calls []SideCall) {
	for _, call := range calls {
		callCtx, cancel := context.WithTimeout(ctx, sideCallTimeout)
		err := runRecovered(callCtx, call)
		cancel()

		if err != nil {
			metrics.SideCallsTotal.WithLabelValues(call.Name, "failed").Inc()
			s.logger.Warn("Side call failed",
				zap.String("step", call.Name),
				zap.Error(err))
			continue
		}
		metrics.SideCallsTotal.WithLabelValues(call.Name, "completed").Inc()
		s.logger.Debug("Side call completed", zap.String("step", call.Name))
	}
}

func runRecovered(ctx context.Context, call SideCall) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("side call %s panicked: %v", call.Name, r)
		}
	}()
	return call.Run(ctx)
}
