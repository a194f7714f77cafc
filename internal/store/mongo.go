package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phisheye/phisheye/internal/model"
)

const scansCollection = "scans"

// MongoStore persists scan records in MongoDB
type MongoStore struct {
	client *mongo.Client
	scans  *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection, and ensures
// the indexes the recency queries rely on.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	s := &MongoStore{
		client: client,
		scans:  client.Database(database).Collection(scansCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		log.Printf("failed to create scan indexes: %v", err)
	}

	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.scans.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "normalizedUrl", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "callerId", Value: 1}, {Key: "normalizedUrl", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

// SaveScan inserts one scan record
func (s *MongoStore) SaveScan(ctx context.Context, record model.ScanRecord) error {
	if _, err := s.scans.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert scan record: %w", err)
	}
	return nil
}

// FindRecent returns the newest computed record for normalizedURL created at
// or after since, or nil. Cache-served records are excluded so the freshness
// window runs from computation time, not from the last repeat scan.
func (s *MongoStore) FindRecent(ctx context.Context, normalizedURL string, since time.Time) (*model.ScanRecord, error) {
	filter := bson.M{
		"normalizedUrl": normalizedURL,
		"cached":        false,
		"createdAt":     bson.M{"$gte": since},
	}
	return s.findOne(ctx, filter)
}

// FindRecentForCaller is FindRecent scoped to callerID
func (s *MongoStore) FindRecentForCaller(ctx context.Context, callerID, normalizedURL string, since time.Time) (*model.ScanRecord, error) {
	filter := bson.M{
		"callerId":      callerID,
		"normalizedUrl": normalizedURL,
		"createdAt":     bson.M{"$gte": since},
	}
	return s.findOne(ctx, filter)
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*model.ScanRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var record model.ScanRecord
	err := s.scans.FindOne(ctx, filter, opts).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query scan records: %w", err)
	}
	return &record, nil
}

// ListForCaller returns up to limit of the caller's records, newest first
func (s *MongoStore) ListForCaller(ctx context.Context, callerID string, limit int) ([]model.ScanRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.scans.Find(ctx, bson.M{"callerId": callerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query scan history: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var records []model.ScanRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode scan history: %w", err)
	}
	return records, nil
}

// Close disconnects the client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
