package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tuncerburak97/bekci/internal/model"
)

const collection = "log_entries"

type Repository struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(uri, dbName string) (*Repository, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	return &Repository{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

func (r *Repository) Close() error {
	return r.client.Disconnect(context.Background())
}

func (r *Repository) Save(ctx context.Context, entry *model.Entry) error {
	_, err := r.db.Collection(collection).InsertOne(ctx, entry)
	return err
}

func (r *Repository) SaveBatch(ctx context.Context, entries []*model.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]any, len(entries))
	for i, entry := range entries {
		docs[i] = entry
	}
	_, err := r.db.Collection(collection).InsertMany(ctx, docs)
	return err
}

func (r *Repository) Migrate(ctx context.Context) error {
	return nil
}
