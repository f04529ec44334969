package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
)

// User es la identidad de la plataforma. El subsistema de auth solo la lee;
// la crea el signup y la habilita la verificación de cuenta.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Enabled      bool
	CreatedAt    time.Time
}

// RefreshToken es el registro server-side de un refresh opaco.
// Se persiste el hash SHA-256, nunca el valor en claro.
type RefreshToken struct {
	TokenHash string
	CreatedAt time.Time
}

// VerificationToken activa una cuenta recién registrada (link por mail).
type VerificationToken struct {
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
}

// Repository es la superficie de persistencia del servicio.
// Las operaciones sobre un mismo refresh token se resuelven con la atomicidad
// del backend (fila en pg, entrada en go-cache), no con locks propios.
type Repository interface {
	Ping(ctx context.Context) error
	Close()

	// Identity lookup / primary auth collaborators
	CreateUser(ctx context.Context, u *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	EnableUser(ctx context.Context, userID uuid.UUID) error

	// Refresh tokens (por hash)
	InsertRefreshToken(ctx context.Context, tokenHash string, createdAt time.Time) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	DeleteRefreshTokenByHash(ctx context.Context, tokenHash string) error

	// Tokens de verificación de cuenta
	InsertVerificationToken(ctx context.Context, t *VerificationToken) error
	UseVerificationToken(ctx context.Context, token string) (uuid.UUID, error)
}
