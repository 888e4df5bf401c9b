package databases

// go generate: mockery --name RefreshTokenDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sports-hub/sports-hub-api/models"
)

const refreshTokenCollectionName = "refreshTokens"

// RefreshTokenDatabase contains the methods to use with the refreshTokens collection
type RefreshTokenDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.RefreshToken, error)
	InsertOne(ctx context.Context, token models.RefreshToken) (InsertOneResultHelper, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type refreshTokenDatabase struct {
	db DatabaseHelper
}

// NewRefreshTokenDatabase initializes a new instance of refresh token database with the provided db connection
func NewRefreshTokenDatabase(db DatabaseHelper) RefreshTokenDatabase {
	return &refreshTokenDatabase{
		db: db,
	}
}

func (t *refreshTokenDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.RefreshToken, error) {
	token := &models.RefreshToken{}
	err := t.db.Collection(refreshTokenCollectionName).FindOne(ctx, filter, opts...).Decode(token)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (t *refreshTokenDatabase) InsertOne(ctx context.Context, token models.RefreshToken) (InsertOneResultHelper, error) {
	return t.db.Collection(refreshTokenCollectionName).InsertOne(ctx, token)
}

func (t *refreshTokenDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return t.db.Collection(refreshTokenCollectionName).DeleteOne(ctx, filter, opts...)
}

func (t *refreshTokenDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return t.db.Collection(refreshTokenCollectionName).DeleteMany(ctx, filter, opts...)
}
