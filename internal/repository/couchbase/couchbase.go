package couchbase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog"

	"github.com/tuncerburak97/bekci/internal/model"
	"github.com/tuncerburak97/bekci/internal/repository/migrations"
)

type Repository struct {
	Cluster *gocb.Cluster
	Bucket  *gocb.Bucket
}

func New(connStr, bucketName, username, password string) (*Repository, error) {
	cluster, err := gocb.Connect(
		connStr,
		gocb.ClusterOptions{
			Username: username,
			Password: password,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to Couchbase: %v", err)
	}

	bucket := cluster.Bucket(bucketName)
	if err := bucket.WaitUntilReady(5*time.Second, nil); err != nil {
		return nil, fmt.Errorf("bucket not ready: %v", err)
	}

	return &Repository{
		Cluster: cluster,
		Bucket:  bucket,
	}, nil
}

func (r *Repository) Save(ctx context.Context, entry *model.Entry) error {
	collection := r.Bucket.DefaultCollection()
	_, err := collection.Upsert(
		fmt.Sprintf("entry_%s", entry.ID),
		entry,
		&gocb.UpsertOptions{},
	)
	return err
}

func (r *Repository) SaveBatch(ctx context.Context, entries []*model.Entry) error {
	collection := r.Bucket.DefaultCollection()
	for _, entry := range entries {
		_, err := collection.Upsert(
			fmt.Sprintf("entry_%s", entry.ID),
			entry,
			&gocb.UpsertOptions{},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) Close() error {
	return r.Cluster.Close(nil)
}

func (r *Repository) Migrate(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	log.Info().Msg("Starting Couchbase migrations")

	indexes := migrations.GetCouchbaseIndexes(r.Bucket.Name())
	for _, indexQuery := range indexes {
		_, err := r.Cluster.Query(indexQuery, nil)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			log.Error().Err(err).Str("query", indexQuery).Msg("Failed to create Couchbase index")
			return fmt.Errorf("index creation error: %v", err)
		}
	}

	return nil
}
