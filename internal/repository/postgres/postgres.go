package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"github.com/tuncerburak97/bekci/internal/model"
	"github.com/tuncerburak97/bekci/internal/repository/migrations"
)

type Repository struct {
	Pool *pgxpool.Pool
}

func New(connStr string) (*Repository, error) {
	pool, err := pgxpool.Connect(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	return &Repository{Pool: pool}, nil
}

const insertEntry = `INSERT INTO log_entry (
	id, request_id, log_type, phase, level, timestamp, method, path,
	status, duration, handler, api_version, record
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func (r *Repository) Save(ctx context.Context, entry *model.Entry) error {
	_, err := r.Pool.Exec(ctx, insertEntry,
		entry.ID, entry.RequestID, entry.LogType, entry.Phase, entry.Level,
		entry.Timestamp, entry.Method, entry.Path, entry.Status,
		entry.Duration, entry.Handler, entry.APIVersion, entry.Record,
	)
	return err
}

func (r *Repository) SaveBatch(ctx context.Context, entries []*model.Entry) error {
	batch := &pgx.Batch{}

	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Int("count", len(entries)).
		Msg("Saving log entries to database")

	for _, entry := range entries {
		batch.Queue(insertEntry,
			entry.ID, entry.RequestID, entry.LogType, entry.Phase, entry.Level,
			entry.Timestamp, entry.Method, entry.Path, entry.Status,
			entry.Duration, entry.Handler, entry.APIVersion, entry.Record,
		)
	}

	br := r.Pool.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to save log entries")
		return err
	}

	return nil
}

func (r *Repository) Close() error {
	r.Pool.Close()
	return nil
}

func (r *Repository) Migrate(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	log.Info().Msg("Starting PostgreSQL migrations")

	if _, err := r.Pool.Exec(ctx, migrations.PostgresSchema); err != nil {
		log.Error().Err(err).Msg("PostgreSQL migrations failed")
		return fmt.Errorf("migration error: %v", err)
	}

	return nil
}
