package databases

// go generate: mockery --name NotificationHistoryDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sports-hub/sports-hub-api/models"
)

const notificationHistoryCollectionName = "notificationsHistory"

// NotificationHistoryDatabase contains the methods to use with the notificationsHistory collection
type NotificationHistoryDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.NotificationHistory, error)
	InsertOne(ctx context.Context, record models.NotificationHistory) (InsertOneResultHelper, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type notificationHistoryDatabase struct {
	db DatabaseHelper
}

// NewNotificationHistoryDatabase initializes a new instance of notification history database with the provided db connection
func NewNotificationHistoryDatabase(db DatabaseHelper) NotificationHistoryDatabase {
	return &notificationHistoryDatabase{
		db: db,
	}
}

func (n *notificationHistoryDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.NotificationHistory, error) {
	var records []models.NotificationHistory
	cur, err := n.db.Collection(notificationHistoryCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (n *notificationHistoryDatabase) InsertOne(ctx context.Context, record models.NotificationHistory) (InsertOneResultHelper, error) {
	return n.db.Collection(notificationHistoryCollectionName).InsertOne(ctx, record)
}

func (n *notificationHistoryDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return n.db.Collection(notificationHistoryCollectionName).CountDocuments(ctx, filter, opts...)
}
