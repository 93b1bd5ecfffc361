package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/domain/repositories"
)

const blobCollection = "audio_blobs"

type blobDocument struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	Size      int       `bson:"size"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// BlobStorage stores audio containers as documents keyed by filename.
// Recordings are short clips, well under the 16MB document limit.
type BlobStorage struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// Ensure BlobStorage implements the BlobStorage interface
var _ repositories.BlobStorage = (*BlobStorage)(nil)

// NewBlobStorage creates a MongoDB-backed blob store
func NewBlobStorage(db *mongo.Database, logger *zap.Logger) *BlobStorage {
	return &BlobStorage{
		collection: db.Collection(blobCollection),
		logger:     logger,
	}
}

// Put implements repositories.BlobStorage
func (s *BlobStorage) Put(ctx context.Context, key string, data []byte) error {
	doc := blobDocument{
		Key:       key,
		Data:      data,
		Size:      len(data),
		UpdatedAt: time.Now(),
	}

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		s.logger.Error("Failed to store blob", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to store blob: %w", err)
	}
	return nil
}

// Get implements repositories.BlobStorage
func (s *BlobStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var doc blobDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrBlobNotFound
		}
		s.logger.Error("Failed to get blob", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get blob: %w", err)
	}
	return doc.Data, nil
}

// Delete implements repositories.BlobStorage
func (s *BlobStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		s.logger.Error("Failed to delete blob", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}
