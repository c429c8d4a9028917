package tenant

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSource loads tenant documents from a MongoDB collection, keyed by
// the "_id" field.
type MongoSource struct {
	Collection *mongo.Collection
}

// NewMongoSource constructs a MongoSource backed by collection.
func NewMongoSource(collection *mongo.Collection) *MongoSource {
	return &MongoSource{Collection: collection}
}

func (m *MongoSource) Load(ctx context.Context, id string) ([]byte, error) {
	var doc bson.M
	if err := m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, fmt.Errorf("tenant mongo source: find %s: %w", id, err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("tenant mongo source: marshal %s: %w", id, err)
	}
	return raw, nil
}

func (m *MongoSource) ListIDs(ctx context.Context) ([]string, error) {
	cursor, err := m.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("tenant mongo source: find all: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("tenant mongo source: decode id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}
