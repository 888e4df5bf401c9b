package databases

// go generate: mockery --name ScheduledNotificationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sports-hub/sports-hub-api/models"
)

const scheduledNotificationCollectionName = "scheduledNotifications"

// ScheduledNotificationDatabase contains the methods to use with the scheduledNotifications collection
type ScheduledNotificationDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ScheduledNotification, error)
	InsertOne(ctx context.Context, pending models.ScheduledNotification) (InsertOneResultHelper, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type scheduledNotificationDatabase struct {
	db DatabaseHelper
}

// NewScheduledNotificationDatabase initializes a new instance of scheduled notification database with the provided db connection
func NewScheduledNotificationDatabase(db DatabaseHelper) ScheduledNotificationDatabase {
	return &scheduledNotificationDatabase{
		db: db,
	}
}

func (s *scheduledNotificationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ScheduledNotification, error) {
	var pending []models.ScheduledNotification
	cur, err := s.db.Collection(scheduledNotificationCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&pending)
	if err != nil {
		return nil, err
	}
	return pending, nil
}

func (s *scheduledNotificationDatabase) InsertOne(ctx context.Context, pending models.ScheduledNotification) (InsertOneResultHelper, error) {
	return s.db.Collection(scheduledNotificationCollectionName).InsertOne(ctx, pending)
}

func (s *scheduledNotificationDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return s.db.Collection(scheduledNotificationCollectionName).DeleteOne(ctx, filter, opts...)
}
