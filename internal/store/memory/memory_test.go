package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/reddgate/internal/store/core"
)

func TestUsers_CreateGetEnable(t *testing.T) {
	ctx := context.Background()
	s := New(0)

	u := &core.User{
		ID:        uuid.New(),
		Username:  "alice",
		Email:     "alice@example.com",
		Enabled:   false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser err: %v", err)
	}
	if err := s.CreateUser(ctx, u); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicado: esperaba ErrConflict, obtuvo %v", err)
	}

	// mismo email con otro username también choca, como el UNIQUE de pg
	dup := &core.User{
		ID:        uuid.New(),
		Username:  "alice2",
		Email:     "alice@example.com",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("email duplicado: esperaba ErrConflict, obtuvo %v", err)
	}

	got, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername err: %v", err)
	}
	if got.Enabled {
		t.Fatal("el usuario nació habilitado")
	}

	if err := s.EnableUser(ctx, u.ID); err != nil {
		t.Fatalf("EnableUser err: %v", err)
	}
	got, _ = s.GetUserByUsername(ctx, "alice")
	if !got.Enabled {
		t.Fatal("EnableUser no habilitó la cuenta")
	}

	if err := s.EnableUser(ctx, uuid.New()); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("EnableUser de desconocido: esperaba ErrNotFound, obtuvo %v", err)
	}
	if _, err := s.GetUserByUsername(ctx, "nadie"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("esperaba ErrNotFound, obtuvo %v", err)
	}
}

func TestVerificationToken_SingleUse(t *testing.T) {
	ctx := context.Background()
	s := New(0)

	uid := uuid.New()
	vt := &core.VerificationToken{Token: "tok-1", UserID: uid, CreatedAt: time.Now().UTC()}
	if err := s.InsertVerificationToken(ctx, vt); err != nil {
		t.Fatal(err)
	}

	got, err := s.UseVerificationToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("UseVerificationToken err: %v", err)
	}
	if got != uid {
		t.Fatalf("user id: got %v want %v", got, uid)
	}

	// segundo uso falla: el token se consume
	if _, err := s.UseVerificationToken(ctx, "tok-1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("reuso: esperaba ErrNotFound, obtuvo %v", err)
	}
}

func TestRefreshTokens_InsertGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New(0)

	now := time.Now().UTC()
	if err := s.InsertRefreshToken(ctx, "hash-1", now); err != nil {
		t.Fatal(err)
	}
	rt, err := s.GetRefreshTokenByHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("GetRefreshTokenByHash err: %v", err)
	}
	if rt.TokenHash != "hash-1" || !rt.CreatedAt.Equal(now) {
		t.Fatalf("registro inesperado: %+v", rt)
	}

	if err := s.DeleteRefreshTokenByHash(ctx, "hash-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetRefreshTokenByHash(ctx, "hash-1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("esperaba ErrNotFound, obtuvo %v", err)
	}
	// delete idempotente
	if err := s.DeleteRefreshTokenByHash(ctx, "hash-1"); err != nil {
		t.Fatalf("delete repetido err: %v", err)
	}
}
