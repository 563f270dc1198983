package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"forum-account/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	// GetByEmail compara el email sin distinguir mayusculas.
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByName(ctx context.Context, name string) (domain.User, error)
	UpdateByID(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error)
}

// pgxQuerier es el subconjunto de pgxpool.Pool que usan los repositorios.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const pgUniqueViolation = "23505"

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	db pgxQuerier
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: pool}
}

const userColumns = `id, name, email, password_hash, created_at, updated_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const query = `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, translatePgErr(err)
	}
	return user, nil
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *PgUserRepository) GetByName(ctx context.Context, name string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE name = $1`, name)
}

// UpdateByID aplica solo los campos presentes en update y devuelve el
// registro resultante.
func (r *PgUserRepository) UpdateByID(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, ErrNotFound
	}
	const query = `
		UPDATE users
		SET name = COALESCE($2, name),
		    password_hash = COALESCE($3, password_hash),
		    updated_at = $4
		WHERE id = $1
		RETURNING ` + userColumns
	return r.getOne(ctx, query, id, update.Name, update.PasswordHash, time.Now().UTC())
}

func (r *PgUserRepository) getOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, translatePgErr(err)
	}
	return u, nil
}

func translatePgErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	return err
}
