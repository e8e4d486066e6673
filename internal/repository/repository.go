package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	ora "github.com/sijms/go-ora/v2"

	"github.com/tuncerburak97/bekci/internal/config"
	"github.com/tuncerburak97/bekci/internal/model"
	"github.com/tuncerburak97/bekci/internal/repository/couchbase"
	"github.com/tuncerburak97/bekci/internal/repository/mongo"
	"github.com/tuncerburak97/bekci/internal/repository/oracle"
	"github.com/tuncerburak97/bekci/internal/repository/postgres"
)

// EntryRepository persists emitted log entries.
type EntryRepository interface {
	Save(ctx context.Context, entry *model.Entry) error
	SaveBatch(ctx context.Context, entries []*model.Entry) error
	Migrate(ctx context.Context) error
	Close() error
}

func New(cfg *config.DBConfig) (EntryRepository, error) {
	switch cfg.Type {
	case "postgres":
		log.Info().
			Str("type", "postgres").
			Str("host", cfg.Host).
			Int("port", cfg.Port).
			Str("database", cfg.Database).
			Msg("Connecting to database")

		connStr := fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?pool_max_conns=%d&pool_min_conns=%d",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
			cfg.Pool.MaxConns, cfg.Pool.MinConns,
		)
		return postgres.New(connStr)

	case "mongodb":
		uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.User, cfg.Password, cfg.Host, cfg.Port)
		return mongo.New(uri, cfg.Database)

	case "oracle":
		connStr := ora.BuildUrl(cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, nil)
		return oracle.New(connStr)

	case "couchbase":
		connStr := fmt.Sprintf("couchbase://%s:%d", cfg.Host, cfg.Port)
		return couchbase.New(connStr, cfg.Database, cfg.User, cfg.Password)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}
