package storage

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const defaultDatabase = "wowscrape"

// MongoSink stores each table as a collection, one document per row.
// Existing documents in the collection are replaced.
type MongoSink struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoSink(ctx context.Context, uri string) (*MongoSink, error) {
	dbName := defaultDatabase
	if cs, err := connstring.ParseAndValidate(uri); err == nil && cs.Database != "" {
		dbName = cs.Database
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return &MongoSink{Client: client, Database: client.Database(dbName)}, nil
}

func (s *MongoSink) WriteTable(ctx context.Context, t Table) error {
	coll := s.Database.Collection(collectionName(t.Name))
	if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clear %s: %w", coll.Name(), err)
	}
	if len(t.Rows) == 0 {
		return nil
	}
	docs := make([]any, 0, len(t.Rows))
	for _, rec := range t.Records() {
		doc := make(bson.D, 0, len(rec))
		for i, v := range rec {
			doc = append(doc, bson.E{Key: t.Columns[i], Value: v})
		}
		docs = append(docs, doc)
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func (s *MongoSink) Close() error {
	return s.Client.Disconnect(context.Background())
}

func collectionName(name string) string {
	if name == "" {
		return "data"
	}
	return strings.ReplaceAll(name, "$", "_")
}
