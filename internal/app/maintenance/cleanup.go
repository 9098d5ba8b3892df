package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	iauth "github.com/virtualstage/backlot/internal/auth"
	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/internal/monitoring/checks"
	"github.com/virtualstage/backlot/internal/services"
	"github.com/virtualstage/backlot/pkg/logger"
)

const (
	defaultAuditRetentionDays = 90
	defaultSessionSpec        = "@hourly"
	defaultAuditSpec          = "@daily"
	defaultTokenSpec          = "@daily"
)

// jobState tracks run history for a single scheduled job. Guarded by Cleaner.mu.
type jobState struct {
	name                string
	lastRunAt           time.Time
	totalRuns           uint64
	consecutiveFailures uint64
}

// Cleaner coordinates background maintenance tasks such as purging expired sessions,
// pruning stale audit logs, and expiring invitation and password reset tokens.
type Cleaner struct {
	db        *gorm.DB
	sessions  *iauth.SessionService
	audit     *services.AuditService
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	enabled   bool
	retention int

	sessionSchedule string
	auditSchedule   string
	tokenSchedule   string

	mu         sync.Mutex
	sessionJob *jobState
	auditJob   *jobState
	tokenJob   *jobState
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for scheduling and cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// WithTokenSchedule overrides the cron specification for token cleanup.
func WithTokenSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.tokenSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency results in
// the corresponding cleanup job being skipped.
func NewCleaner(db *gorm.DB, sessions *iauth.SessionService, audit *services.AuditService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:              db,
		sessions:        sessions,
		audit:           audit,
		now:             time.Now,
		retention:       defaultAuditRetentionDays,
		sessionSchedule: defaultSessionSpec,
		auditSchedule:   defaultAuditSpec,
		tokenSchedule:   defaultTokenSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	if cleaner.sessions != nil {
		cleaner.sessionJob = &jobState{name: "session_cleanup"}
	}
	if cleaner.audit != nil && cleaner.retention > 0 {
		cleaner.auditJob = &jobState{name: "audit_retention"}
	}
	if cleaner.db != nil {
		cleaner.tokenJob = &jobState{name: "token_cleanup"}
	}

	cleaner.enabled = cleaner.sessionJob != nil || cleaner.auditJob != nil || cleaner.tokenJob != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.sessionJob != nil {
		if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
			c.runJob(context.Background(), c.sessionJob, c.cleanupSessions)
		}); err != nil {
			return err
		}
	}

	if c.auditJob != nil {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			c.runJob(context.Background(), c.auditJob, c.cleanupAudit)
		}); err != nil {
			return err
		}
	}

	if c.tokenJob != nil {
		if _, err := c.cron.AddFunc(c.tokenSchedule, func() {
			c.runJob(context.Background(), c.tokenJob, c.cleanupTokens)
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessionJob != nil {
		errs = multierr.Append(errs, c.runJob(ctx, c.sessionJob, c.cleanupSessions))
	}
	if c.auditJob != nil {
		errs = multierr.Append(errs, c.runJob(ctx, c.auditJob, c.cleanupAudit))
	}
	if c.tokenJob != nil {
		errs = multierr.Append(errs, c.runJob(ctx, c.tokenJob, c.cleanupTokens))
	}

	return errs
}

// JobStatuses reports per-job run history for the maintenance health check.
func (c *Cleaner) JobStatuses() []checks.MaintenanceJobStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	var statuses []checks.MaintenanceJobStatus
	for _, job := range []*jobState{c.sessionJob, c.auditJob, c.tokenJob} {
		if job == nil {
			continue
		}
		statuses = append(statuses, checks.MaintenanceJobStatus{
			Name:                job.name,
			LastRunAt:           job.lastRunAt,
			TotalRuns:           job.totalRuns,
			ConsecutiveFailures: job.consecutiveFailures,
		})
	}
	return statuses
}

func (c *Cleaner) runJob(ctx context.Context, job *jobState, fn func(context.Context) error) error {
	err := fn(ctx)

	c.mu.Lock()
	job.lastRunAt = c.now()
	job.totalRuns++
	if err != nil {
		job.consecutiveFailures++
	} else {
		job.consecutiveFailures = 0
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("maintenance job failed", zap.String("job", job.name), zap.Error(err))
	}
	return err
}

func (c *Cleaner) cleanupSessions(ctx context.Context) error {
	_, err := c.sessions.CleanupExpired(ctx)
	return err
}

func (c *Cleaner) cleanupAudit(ctx context.Context) error {
	_, err := c.audit.CleanupOlderThan(ctx, c.retention)
	return err
}

func (c *Cleaner) cleanupTokens(ctx context.Context) error {
	_, err := CleanupTokens(ctx, c.db, c.now())
	return err
}

// TokenCleanupStats captures the number of records affected for each token sweep.
type TokenCleanupStats struct {
	PasswordResets     int64
	ExpiredInvitations int64
}

// CleanupTokens deletes spent password reset tokens and flips overdue pending
// invitations to expired. Accepted and cancelled invitations stay in place for
// audit history.
func CleanupTokens(ctx context.Context, db *gorm.DB, now time.Time) (TokenCleanupStats, error) {
	if db == nil {
		return TokenCleanupStats{}, errors.New("cleanup tokens: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stats := TokenCleanupStats{}

	if result := db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&models.PasswordResetToken{}); result.Error != nil {
		return stats, fmt.Errorf("cleanup tokens: password reset tokens: %w", result.Error)
	} else {
		stats.PasswordResets = result.RowsAffected
	}

	if result := db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationStatusPending, now).
		Update("status", models.InvitationStatusExpired); result.Error != nil {
		return stats, fmt.Errorf("cleanup tokens: invitations: %w", result.Error)
	} else {
		stats.ExpiredInvitations = result.RowsAffected
	}

	return stats, nil
}
