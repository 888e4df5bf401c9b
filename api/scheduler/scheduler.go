package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/sports-hub/sports-hub-api/api"
	"github.com/sports-hub/sports-hub-api/api/handlers"
	"github.com/sports-hub/sports-hub-api/databases"
)

// Scheduler runs the periodic background jobs: dispatching future-dated
// notifications once their send time passes and sweeping expired refresh
// tokens as a fallback for the TTL index
type Scheduler struct {
	cron     *cron.Cron
	SNDB     databases.ScheduledNotificationDatabase
	TDB      databases.RefreshTokenDatabase
	Notifier handlers.Notifier
}

// New creates a scheduler; jobs run in UTC
func New(snDB databases.ScheduledNotificationDatabase, tDB databases.RefreshTokenDatabase, notifier handlers.Notifier) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		SNDB:     snDB,
		TDB:      tDB,
		Notifier: notifier,
	}
}

// Start registers the jobs and begins the cron loop
func (s *Scheduler) Start() {
	// due notifications are checked every minute
	_, err := s.cron.AddFunc("* * * * *", s.dispatchDueNotifications)
	if err != nil {
		zap.S().Errorw("failed to register notification dispatch job", "error", err)
	}

	// expired refresh tokens sweep daily at 3 AM UTC
	_, err = s.cron.AddFunc("0 3 * * *", s.sweepExpiredTokens)
	if err != nil {
		zap.S().Errorw("failed to register token sweep job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("scheduler started")
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

// dispatchDueNotifications fans out every scheduled notification whose send
// time has passed and removes the pending record. A record is deleted even
// when dispatch fails so a poison entry cannot wedge the queue.
func (s *Scheduler) dispatchDueNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), api.QueryTimeout)
	defer cancel()

	due, err := s.SNDB.Find(ctx, bson.M{"sendAt": bson.M{"$lte": time.Now()}})
	if err != nil {
		zap.S().Errorw("failed to fetch due scheduled notifications", "error", err)
		return
	}

	for _, pending := range due {
		sent, realtime, err := s.Notifier.Dispatch(ctx, handlers.NotificationRequest{
			Title:         pending.Title,
			Message:       pending.Message,
			Icon:          pending.Icon,
			Target:        pending.Target,
			Priority:      pending.Priority,
			SpecificEmail: pending.SpecificEmail,
			BulkEmails:    pending.BulkEmails,
		}, pending.SentBy)
		if err != nil {
			zap.S().Errorw("failed to dispatch scheduled notification",
				"id", pending.ID.Hex(), "title", pending.Title, "error", err)
		} else {
			zap.S().Infow("scheduled notification dispatched",
				"id", pending.ID.Hex(), "persisted", sent, "realtime", realtime)
		}

		if _, err := s.SNDB.DeleteOne(ctx, bson.M{"_id": pending.ID}); err != nil {
			zap.S().Errorw("failed to remove dispatched notification",
				"id", pending.ID.Hex(), "error", err)
		}
	}
}

// sweepExpiredTokens removes refresh token records past their expiry. The
// TTL index normally handles this; the sweep covers deployments where the
// index was dropped or never built.
func (s *Scheduler) sweepExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), api.QueryTimeout)
	defer cancel()

	count, err := s.TDB.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": time.Now()}})
	if err != nil {
		zap.S().Errorw("failed to sweep expired refresh tokens", "error", err)
		return
	}
	if count > 0 {
		zap.S().Infow("expired refresh tokens swept", "count", count)
	}
}
