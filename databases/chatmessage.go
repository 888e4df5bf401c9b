package databases

// go generate: mockery --name ChatMessageDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sports-hub/sports-hub-api/models"
)

const chatMessageCollectionName = "chatMessages"

// ChatMessageDatabase contains the methods to use with the chatMessages collection
type ChatMessageDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatMessage, error)
	InsertOne(ctx context.Context, message models.ChatMessage) (InsertOneResultHelper, error)
}

type chatMessageDatabase struct {
	db DatabaseHelper
}

// NewChatMessageDatabase initializes a new instance of chat message database with the provided db connection
func NewChatMessageDatabase(db DatabaseHelper) ChatMessageDatabase {
	return &chatMessageDatabase{
		db: db,
	}
}

func (c *chatMessageDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	cur, err := c.db.Collection(chatMessageCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&messages)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *chatMessageDatabase) InsertOne(ctx context.Context, message models.ChatMessage) (InsertOneResultHelper, error) {
	return c.db.Collection(chatMessageCollectionName).InsertOne(ctx, message)
}
