package databases

// go generate: mockery --name SettingsDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sports-hub/sports-hub-api/models"
)

const settingsCollectionName = "systemSettings"

// SettingsDatabase contains the methods to use with the systemSettings collection
type SettingsDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.SystemSettings, error)
	InsertOne(ctx context.Context, settings models.SystemSettings) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type settingsDatabase struct {
	db DatabaseHelper
}

// NewSettingsDatabase initializes a new instance of settings database with the provided db connection
func NewSettingsDatabase(db DatabaseHelper) SettingsDatabase {
	return &settingsDatabase{
		db: db,
	}
}

func (s *settingsDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.SystemSettings, error) {
	settings := &models.SystemSettings{}
	err := s.db.Collection(settingsCollectionName).FindOne(ctx, filter, opts...).Decode(settings)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *settingsDatabase) InsertOne(ctx context.Context, settings models.SystemSettings) (InsertOneResultHelper, error) {
	return s.db.Collection(settingsCollectionName).InsertOne(ctx, settings)
}

func (s *settingsDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return s.db.Collection(settingsCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (s *settingsDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return s.db.Collection(settingsCollectionName).CountDocuments(ctx, filter, opts...)
}
