package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend keeps one mongo collection per document collection, with the
// JSON body stored as a string field
type MongoBackend struct {
	client *mongo.Client
	db     *mongo.Database
}

type mongoDoc struct {
	ID   string `bson:"_id"`
	Data string `bson:"data"`
}

func NewMongoBackend(client *mongo.Client, database string) *MongoBackend {
	return &MongoBackend{client: client, db: client.Database(database)}
}

func (b *MongoBackend) Get(ctx context.Context, key Key) ([]byte, error) {
	var doc mongoDoc
	err := b.db.Collection(key.Collection).FindOne(ctx, bson.M{"_id": key.ID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return []byte(doc.Data), nil
}

func (b *MongoBackend) Put(ctx context.Context, key Key, data []byte) error {
	_, err := b.db.Collection(key.Collection).ReplaceOne(ctx,
		bson.M{"_id": key.ID},
		mongoDoc{ID: key.ID, Data: string(data)},
		options.Replace().SetUpsert(true),
	)
	return err
}

func (b *MongoBackend) Delete(ctx context.Context, key Key) error {
	_, err := b.db.Collection(key.Collection).DeleteOne(ctx, bson.M{"_id": key.ID})
	return err
}

func (b *MongoBackend) List(ctx context.Context, collection string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1})
	cursor, err := b.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (b *MongoBackend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}
