package checks

import (
	"context"
	"strings"
	"time"

	"github.com/virtualstage/backlot/internal/monitoring"
)

const defaultMaintenanceMaxAge = 6 * time.Hour

// MaintenanceJobStatus describes the last observed outcome of a scheduled job.
type MaintenanceJobStatus struct {
	Name                string
	LastRunAt           time.Time
	TotalRuns           uint64
	ConsecutiveFailures uint64
}

// MaintenanceObserver reports the current state of registered background jobs.
// The maintenance cleaner implements this interface.
type MaintenanceObserver interface {
	JobStatuses() []MaintenanceJobStatus
}

// Maintenance verifies that background jobs run successfully within the expected interval.
// When maxAge is zero, a sensible default window (6h) is used.
func Maintenance(observer MaintenanceObserver, maxAge time.Duration) monitoring.Check {
	if maxAge <= 0 {
		maxAge = defaultMaintenanceMaxAge
	}

	return monitoring.NewCheck("maintenance", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if observer == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusUp,
				Details:  "maintenance scheduler disabled",
				Duration: time.Since(start),
			}
		}

		jobs := observer.JobStatuses()
		now := time.Now()

		if len(jobs) == 0 {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusUp,
				Details:  "no maintenance jobs registered",
				Duration: time.Since(start),
			}
		}

		status := monitoring.StatusUp
		var failures []string

		for _, job := range jobs {
			if job.TotalRuns == 0 {
				failures = append(failures, job.Name+": pending first run")
				continue
			}

			if job.ConsecutiveFailures > 0 {
				status = worstStatus(status, monitoring.StatusDown)
				failures = append(failures, job.Name+": consecutive failures")
			}

			if maxAge > 0 && !job.LastRunAt.IsZero() && now.Sub(job.LastRunAt) > maxAge {
				status = worstStatus(status, monitoring.StatusDegraded)
				failures = append(failures, job.Name+": stale run "+job.LastRunAt.UTC().Format(time.RFC3339))
			}
		}

		details := strings.Join(failures, "; ")

		return monitoring.ProbeResult{
			Status:   status,
			Details:  details,
			Duration: time.Since(start),
		}
	})
}

func worstStatus(current, candidate monitoring.ProbeStatus) monitoring.ProbeStatus {
	if current == monitoring.StatusDown || candidate == monitoring.StatusDown {
		return monitoring.StatusDown
	}
	if current == monitoring.StatusDegraded || candidate == monitoring.StatusDegraded {
		return monitoring.StatusDegraded
	}
	return monitoring.StatusUp
}
