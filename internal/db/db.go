package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"forum-account/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Configuración razonable para ambientes iniciales.
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Schema crea las tablas si no existen. Los UNIQUE de users cierran la
// carrera entre el chequeo previo y el INSERT.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_key ON users (lower(email));
CREATE TABLE IF NOT EXISTS posts (
	id          UUID PRIMARY KEY,
	author_id   UUID NOT NULL,
	author_name TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '',
	post_time   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS posts_author_id_idx ON posts (author_id);
CREATE TABLE IF NOT EXISTS comments (
	id          UUID PRIMARY KEY,
	post_id     UUID NOT NULL,
	author_id   UUID NOT NULL,
	author_name TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS comments_author_id_idx ON comments (author_id);
`

// EnsureSchema aplica Schema sobre el pool.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}
