package databases

// go generate: mockery --name EventDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sports-hub/sports-hub-api/models"
)

const eventCollectionName = "events"

// EventDatabase contains the methods to use with the events collection
type EventDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Event, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Event, error)
	InsertOne(ctx context.Context, event models.Event) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type eventDatabase struct {
	db DatabaseHelper
}

// NewEventDatabase initializes a new instance of event database with the provided db connection
func NewEventDatabase(db DatabaseHelper) EventDatabase {
	return &eventDatabase{
		db: db,
	}
}

func (e *eventDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Event, error) {
	event := &models.Event{}
	err := e.db.Collection(eventCollectionName).FindOne(ctx, filter, opts...).Decode(event)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (e *eventDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Event, error) {
	var events []models.Event
	cur, err := e.db.Collection(eventCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&events)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (e *eventDatabase) InsertOne(ctx context.Context, event models.Event) (InsertOneResultHelper, error) {
	return e.db.Collection(eventCollectionName).InsertOne(ctx, event)
}

func (e *eventDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return e.db.Collection(eventCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (e *eventDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return e.db.Collection(eventCollectionName).UpdateMany(ctx, filter, update, opts...)
}

func (e *eventDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return e.db.Collection(eventCollectionName).DeleteOne(ctx, filter, opts...)
}

func (e *eventDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return e.db.Collection(eventCollectionName).CountDocuments(ctx, filter, opts...)
}
