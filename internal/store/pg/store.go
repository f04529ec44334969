package pg

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/reddgate/internal/store/core"
)

type Store struct{ pool *pgxpool.Pool }

type Tuning struct {
	MaxConns        int
	MinConns        int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, tn Tuning) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if tn.MaxConns > 0 {
		pcfg.MaxConns = int32(tn.MaxConns)
	}
	if tn.MinConns > 0 {
		pcfg.MinConns = int32(tn.MinConns)
	}
	if tn.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(tn.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (metrics/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// ───────────────────────── users ─────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	const q = `
INSERT INTO app_user (id, username, email, password_hash, enabled, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.pool.Exec(ctx, q, u.ID, u.Username, u.Email, u.PasswordHash, u.Enabled, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrConflict
		}
		log.Printf(`{"level":"error","msg":"pg_create_user_err","username":"%s","err":"%v"}`, u.Username, err)
		return err
	}
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	const q = `
SELECT id, username, email, password_hash, enabled, created_at
FROM app_user
WHERE username = $1
LIMIT 1`
	var u core.User
	err := s.pool.QueryRow(ctx, q, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Enabled, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		log.Printf(`{"level":"error","msg":"pg_get_user_err","username":"%s","err":"%v"}`, username, err)
		return nil, err
	}
	return &u, nil
}

func (s *Store) EnableUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE app_user SET enabled = TRUE WHERE id = $1`, userID)
	return err
}

// ───────────────────────── refresh tokens ─────────────────────────

func (s *Store) InsertRefreshToken(ctx context.Context, tokenHash string, createdAt time.Time) error {
	const q = `INSERT INTO refresh_token (token_hash, created_at) VALUES ($1, $2)`
	if _, err := s.pool.Exec(ctx, q, tokenHash, createdAt); err != nil {
		log.Printf(`{"level":"error","msg":"pg_insert_refresh_err","err":"%v"}`, err)
		return err
	}
	return nil
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*core.RefreshToken, error) {
	const q = `SELECT token_hash, created_at FROM refresh_token WHERE token_hash = $1 LIMIT 1`
	var rt core.RefreshToken
	if err := s.pool.QueryRow(ctx, q, tokenHash).Scan(&rt.TokenHash, &rt.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		log.Printf(`{"level":"error","msg":"pg_get_refresh_by_hash_err","err":"%v"}`, err)
		return nil, err
	}
	return &rt, nil
}

// DeleteRefreshTokenByHash es idempotente: borrar un hash ausente no es error.
func (s *Store) DeleteRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM refresh_token WHERE token_hash = $1`, tokenHash)
	return err
}

// ───────────────────────── verification tokens ─────────────────────────

func (s *Store) InsertVerificationToken(ctx context.Context, t *core.VerificationToken) error {
	const q = `INSERT INTO verification_token (token, user_id, created_at) VALUES ($1, $2, $3)`
	_, err := s.pool.Exec(ctx, q, t.Token, t.UserID, t.CreatedAt)
	return err
}

// UseVerificationToken consume el token en una sola sentencia (atomicidad por fila).
func (s *Store) UseVerificationToken(ctx context.Context, token string) (uuid.UUID, error) {
	const q = `DELETE FROM verification_token WHERE token = $1 RETURNING user_id`
	var userID uuid.UUID
	if err := s.pool.QueryRow(ctx, q, token).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, core.ErrNotFound
		}
		return uuid.Nil, err
	}
	return userID, nil
}

// isUniqueViolation detecta 23505 sin importar el driver error concreto.
func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
