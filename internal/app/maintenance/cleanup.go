package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mchen88/cartly/internal/models"
	"github.com/mchen88/cartly/internal/services"
	"github.com/mchen88/cartly/pkg/logger"
)

const (
	defaultCartRetentionDays = 30
	defaultExpirySpec        = "@hourly"
	defaultRetentionSpec     = "@daily"
	defaultCartSpec          = "@daily"
)

// Cleaner coordinates background maintenance: purging expired
// notifications, enforcing the read-notification retention window, and
// dropping carts abandoned long ago.
type Cleaner struct {
	db            *gorm.DB
	notifications []*services.NotificationService
	cron          *cron.Cron
	now           func() time.Time
	log           *zap.Logger
	cartRetention int

	expirySchedule    string
	retentionSchedule string
	cartSchedule      string
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

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithCartRetentionDays adjusts how long untouched carts are kept.
func WithCartRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.cartRetention = days
		}
	}
}

// WithExpirySchedule overrides the cron specification for the expired-notification purge.
func WithExpirySchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.expirySchedule = spec
		}
	}
}

// WithRetentionSchedule overrides the cron specification for the read-retention purge.
func WithRetentionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.retentionSchedule = spec
		}
	}
}

// WithCartSchedule overrides the cron specification for stale-cart cleanup.
func WithCartSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cartSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil db skips cart cleanup; an empty
// notification list skips the sweeps.
func NewCleaner(db *gorm.DB, notificationServices []*services.NotificationService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:                db,
		now:               time.Now,
		cartRetention:     defaultCartRetentionDays,
		expirySchedule:    defaultExpirySpec,
		retentionSchedule: defaultRetentionSpec,
		cartSchedule:      defaultCartSpec,
		log:               logger.WithModule("maintenance"),
	}

	for _, svc := range notificationServices {
		if svc != nil {
			cleaner.notifications = append(cleaner.notifications, svc)
		}
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if len(c.notifications) > 0 {
		if _, err := c.cron.AddFunc(c.expirySchedule, func() {
			c.sweepExpired(context.Background())
		}); err != nil {
			return err
		}
		if _, err := c.cron.AddFunc(c.retentionSchedule, func() {
			c.sweepRead(context.Background())
		}); err != nil {
			return err
		}
	}

	if c.db != nil {
		if _, err := c.cron.AddFunc(c.cartSchedule, func() {
			if _, err := c.cleanupCarts(context.Background()); err != nil {
				c.log.Warn("stale cart cleanup failed", zap.Error(err))
			}
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

// RunOnce executes every cleanup routine sequentially. Used in tests and
// during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	for _, svc := range c.notifications {
		if _, err := svc.SweepExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
		if _, err := svc.SweepRead(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.db != nil {
		if _, err := c.cleanupCarts(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

func (c *Cleaner) sweepExpired(ctx context.Context) {
	for _, svc := range c.notifications {
		swept, err := svc.SweepExpired(ctx)
		if err != nil {
			c.log.Warn("expired notification sweep failed",
				zap.String("scope", svc.Scope().Name), zap.Error(err))
			continue
		}
		if swept > 0 {
			c.log.Info("swept expired notifications",
				zap.String("scope", svc.Scope().Name), zap.Int64("count", swept))
		}
	}
}

func (c *Cleaner) sweepRead(ctx context.Context) {
	for _, svc := range c.notifications {
		swept, err := svc.SweepRead(ctx)
		if err != nil {
			c.log.Warn("read notification sweep failed",
				zap.String("scope", svc.Scope().Name), zap.Error(err))
			continue
		}
		if swept > 0 {
			c.log.Info("swept read notifications",
				zap.String("scope", svc.Scope().Name), zap.Int64("count", swept))
		}
	}
}

// cleanupCarts drops carts that have not been touched within the cart
// retention window, cascading to their items.
func (c *Cleaner) cleanupCarts(ctx context.Context) (int64, error) {
	cutoff := c.now().UTC().AddDate(0, 0, -c.cartRetention)

	var stale []models.Cart
	if err := c.db.WithContext(ctx).Where("updated_at < ?", cutoff).Find(&stale).Error; err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(stale))
	for _, cart := range stale {
		ids = append(ids, cart.ID)
	}

	if err := c.db.WithContext(ctx).Where("cart_id IN ?", ids).Delete(&models.CartItem{}).Error; err != nil {
		return 0, err
	}
	result := c.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Cart{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
