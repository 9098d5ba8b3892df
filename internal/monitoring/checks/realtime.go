package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/virtualstage/backlot/internal/monitoring"
)

// RealtimeObserver exposes the minimal state required to evaluate realtime health.
type RealtimeObserver interface {
	ActiveConnections() int64
}

// Realtime evaluates websocket hub health from the hub's own connection counter.
func Realtime(observer RealtimeObserver) monitoring.Check {
	return monitoring.NewCheck("realtime", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if observer == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  "realtime hub unavailable",
				Duration: time.Since(start),
			}
		}

		active := observer.ActiveConnections()
		if active < 0 {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  "negative connection count",
				Duration: time.Since(start),
			}
		}

		return monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Details:  fmt.Sprintf("%d active connections", active),
			Duration: time.Since(start),
		}
	})
}
