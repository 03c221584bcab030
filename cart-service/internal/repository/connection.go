package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OpenMongoBackend connects to uri and returns a session backend on database
// with its indexes in place. The returned func disconnects the client.
func OpenMongoBackend(ctx context.Context, uri, database string) (*MongoBackend, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetAppName("cart-service").
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(20))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	disconnect := func() { _ = client.Disconnect(context.Background()) }

	if err := client.Ping(ctx, nil); err != nil {
		disconnect()
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	backend := NewMongoBackend(client.Database(database))
	if err := backend.CreateIndexes(ctx); err != nil {
		disconnect()
		return nil, nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return backend, disconnect, nil
}
