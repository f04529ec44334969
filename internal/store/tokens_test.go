package store

import (
	"context"
	"errors"
	"testing"
	"time"

	tokens "github.com/dropDatabas3/reddgate/internal/security/token"
	"github.com/dropDatabas3/reddgate/internal/store/core"
	"github.com/dropDatabas3/reddgate/internal/store/memory"
)

func TestRefreshTokens_GenerateValidateRevoke(t *testing.T) {
	ctx := context.Background()
	rt := NewRefreshTokens(memory.New(0), 0)

	raw, err := rt.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate err: %v", err)
	}
	if raw == "" {
		t.Fatal("token vacío")
	}

	// válido mientras no se revoque, las veces que haga falta
	for i := 0; i < 3; i++ {
		if err := rt.Validate(ctx, raw); err != nil {
			t.Fatalf("Validate #%d err: %v", i, err)
		}
	}

	if err := rt.Revoke(ctx, raw); err != nil {
		t.Fatalf("Revoke err: %v", err)
	}
	if err := rt.Validate(ctx, raw); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("tras revocar esperaba ErrNotFound, obtuvo %v", err)
	}

	// revocar de nuevo no es error
	if err := rt.Revoke(ctx, raw); err != nil {
		t.Fatalf("Revoke repetido err: %v", err)
	}
}

func TestRefreshTokens_UnknownToken(t *testing.T) {
	rt := NewRefreshTokens(memory.New(0), 0)
	if err := rt.Validate(context.Background(), "nunca-emitido"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("esperaba ErrNotFound, obtuvo %v", err)
	}
}

func TestRefreshTokens_MaxAge(t *testing.T) {
	ctx := context.Background()
	repo := memory.New(0)
	rt := NewRefreshTokens(repo, time.Hour)

	// sembrar un token viejo directo en el repo
	raw := "token-viejo"
	hash := tokens.SHA256Base64URL(raw)
	if err := repo.InsertRefreshToken(ctx, hash, time.Now().UTC().Add(-2*time.Hour)); err != nil {
		t.Fatal(err)
	}

	if err := rt.Validate(ctx, raw); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("token vencido: esperaba ErrNotFound, obtuvo %v", err)
	}
	// y quedó retirado del repo
	if _, err := repo.GetRefreshTokenByHash(ctx, hash); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("el token vencido sigue en el repo: %v", err)
	}

	// uno fresco pasa
	fresh, err := rt.Generate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.Validate(ctx, fresh); err != nil {
		t.Fatalf("token fresco rechazado: %v", err)
	}
}

func TestRefreshTokens_StoredHashed(t *testing.T) {
	ctx := context.Background()
	repo := memory.New(0)
	rt := NewRefreshTokens(repo, 0)

	raw, err := rt.Generate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// el claro NO está en el repo; el hash sí
	if _, err := repo.GetRefreshTokenByHash(ctx, raw); !errors.Is(err, core.ErrNotFound) {
		t.Fatal("el repo guardó el token en claro")
	}
	if _, err := repo.GetRefreshTokenByHash(ctx, tokens.SHA256Base64URL(raw)); err != nil {
		t.Fatalf("no se encontró el hash del token: %v", err)
	}
}
