package databases

// go generate: mockery --name CategoryDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sports-hub/sports-hub-api/models"
)

const categoryCollectionName = "categories"

// CategoryDatabase contains the methods to use with the categories collection
type CategoryDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Category, error)
	InsertOne(ctx context.Context, category models.Category) (InsertOneResultHelper, error)
	InsertMany(ctx context.Context, categories []interface{}) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type categoryDatabase struct {
	db DatabaseHelper
}

// NewCategoryDatabase initializes a new instance of category database with the provided db connection
func NewCategoryDatabase(db DatabaseHelper) CategoryDatabase {
	return &categoryDatabase{
		db: db,
	}
}

func (c *categoryDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Category, error) {
	var categories []models.Category
	cur, err := c.db.Collection(categoryCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *categoryDatabase) InsertOne(ctx context.Context, category models.Category) (InsertOneResultHelper, error) {
	return c.db.Collection(categoryCollectionName).InsertOne(ctx, category)
}

func (c *categoryDatabase) InsertMany(ctx context.Context, categories []interface{}) error {
	return c.db.Collection(categoryCollectionName).InsertMany(ctx, categories)
}

func (c *categoryDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(categoryCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (c *categoryDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return c.db.Collection(categoryCollectionName).DeleteOne(ctx, filter, opts...)
}

func (c *categoryDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(categoryCollectionName).CountDocuments(ctx, filter, opts...)
}
