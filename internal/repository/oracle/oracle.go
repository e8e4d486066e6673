package oracle

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	_ "github.com/sijms/go-ora/v2"

	"github.com/tuncerburak97/bekci/internal/model"
	"github.com/tuncerburak97/bekci/internal/repository/migrations"
)

type Repository struct {
	DB *sql.DB
}

func New(connStr string) (*Repository, error) {
	db, err := sql.Open("oracle", connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to Oracle: %v", err)
	}

	return &Repository{DB: db}, nil
}

const insertEntry = `INSERT INTO log_entry (
	id, request_id, log_type, phase, log_level, timestamp, method, path,
	status, duration, handler, api_version, record
) VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11, :12, :13)`

func (r *Repository) Save(ctx context.Context, entry *model.Entry) error {
	_, err := r.DB.ExecContext(ctx, insertEntry,
		entry.ID, entry.RequestID, entry.LogType, entry.Phase, entry.Level,
		entry.Timestamp, entry.Method, entry.Path, entry.Status,
		entry.Duration, entry.Handler, entry.APIVersion, string(entry.Record),
	)
	return err
}

func (r *Repository) SaveBatch(ctx context.Context, entries []*model.Entry) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertEntry)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		_, err := stmt.ExecContext(ctx,
			entry.ID, entry.RequestID, entry.LogType, entry.Phase, entry.Level,
			entry.Timestamp, entry.Method, entry.Path, entry.Status,
			entry.Duration, entry.Handler, entry.APIVersion, string(entry.Record),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) Close() error {
	return r.DB.Close()
}

func (r *Repository) Migrate(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	log.Info().Msg("Starting Oracle migrations")

	if _, err := r.DB.ExecContext(ctx, migrations.OracleSchema); err != nil {
		log.Error().Err(err).Msg("Oracle migrations failed")
		return fmt.Errorf("migration error: %v", err)
	}

	return nil
}
