package store

import (
	"context"
	"log"
	"time"

	tokens "github.com/dropDatabas3/reddgate/internal/security/token"
	"github.com/dropDatabas3/reddgate/internal/store/core"
)

// RefreshTokens gestiona los refresh tokens opacos sobre el Repository.
// El cliente solo ve el valor en claro; en el backend queda el hash SHA-256.
type RefreshTokens struct {
	Repo core.Repository

	// MaxAge > 0 rechaza refresh más viejos que ese límite con el mismo
	// ErrNotFound que un token ausente. 0 = viven hasta logout.
	MaxAge time.Duration
}

func NewRefreshTokens(repo core.Repository, maxAge time.Duration) *RefreshTokens {
	return &RefreshTokens{Repo: repo, MaxAge: maxAge}
}

// Generate crea un refresh opaco nuevo, lo persiste y devuelve el claro.
func (s *RefreshTokens) Generate(ctx context.Context) (string, error) {
	raw, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return "", err
	}
	hash := tokens.SHA256Base64URL(raw)
	if err := s.Repo.InsertRefreshToken(ctx, hash, time.Now().UTC()); err != nil {
		log.Printf(`{"level":"error","msg":"refresh_insert_err","err":"%v"}`, err)
		return "", err
	}
	return raw, nil
}

// Validate verifica que el token exista (y no exceda MaxAge si aplica).
// Falla con core.ErrNotFound: el caller debe negar el refresh y forzar re-login.
func (s *RefreshTokens) Validate(ctx context.Context, plaintext string) error {
	hash := tokens.SHA256Base64URL(plaintext)
	rt, err := s.Repo.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		return err
	}
	if s.MaxAge > 0 && time.Since(rt.CreatedAt) > s.MaxAge {
		// Token vencido: lo retiramos y para el caller es como si no existiera.
		_ = s.Repo.DeleteRefreshTokenByHash(ctx, hash)
		return core.ErrNotFound
	}
	return nil
}

// Revoke borra el registro. Idempotente: revocar un token ausente no es error.
func (s *RefreshTokens) Revoke(ctx context.Context, plaintext string) error {
	return s.Repo.DeleteRefreshTokenByHash(ctx, tokens.SHA256Base64URL(plaintext))
}
