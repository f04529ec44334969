package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/reddgate/internal/app"
	"github.com/dropDatabas3/reddgate/internal/config"
	"github.com/dropDatabas3/reddgate/internal/http/router"
	jwtx "github.com/dropDatabas3/reddgate/internal/jwt"
	"github.com/dropDatabas3/reddgate/internal/store"
	"github.com/dropDatabas3/reddgate/internal/store/memory"
)

// captureMailer guarda el último mail "enviado" para poder sacar el link
// de activación sin SMTP real.
type captureMailer struct {
	to   string
	text string
}

func (m *captureMailer) Send(to, subject, htmlBody, textBody string) error {
	m.to = to
	m.text = textBody
	return nil
}

func (m *captureMailer) verifyToken(t *testing.T) string {
	t.Helper()
	const marker = "/v1/auth/verify/"
	i := strings.LastIndex(m.text, marker)
	require.GreaterOrEqual(t, i, 0, "el mail no trae link de verificación: %q", m.text)
	return strings.TrimSpace(m.text[i+len(marker):])
}

func newTestServer(t *testing.T, accessTTL time.Duration) (*httptest.Server, *captureMailer) {
	t.Helper()

	keys, err := jwtx.GenerateEd25519()
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Env = "dev"
	cfg.Server.PublicBaseURL = "http://reddgate.test"
	cfg.JWT.Issuer = "http://reddgate.test"

	repo := memory.New(0)
	mailer := &captureMailer{}

	c := &app.Container{
		Cfg:     cfg,
		Store:   repo,
		Keys:    keys,
		Issuer:  jwtx.NewIssuer(cfg.JWT.Issuer, keys, accessTTL),
		Refresh: store.NewRefreshTokens(repo, 0),
		Mailer:  mailer,
	}

	srv := httptest.NewServer(router.New(router.Deps{Container: c}))
	t.Cleanup(srv.Close)
	return srv, mailer
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type tokenResp struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    string `json:"expiresAt"`
	Username     string `json:"username"`
}

func TestAuthFlow_SignupToLogout(t *testing.T) {
	srv, mailer := newTestServer(t, time.Minute)

	const (
		username = "alice"
		email    = "alice@example.com"
		pass     = "SuperSecreta1!"
	)

	var tokens tokenResp

	t.Run("signup crea la cuenta deshabilitada", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/v1/auth/signup", map[string]string{
			"username": username, "email": email, "password": pass,
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.Equal(t, email, mailer.to)
	})

	t.Run("login antes de activar => 403", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/v1/auth/login", map[string]string{
			"username": username, "password": pass,
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("verify activa la cuenta, y es de un solo uso", func(t *testing.T) {
		token := mailer.verifyToken(t)

		resp, err := http.Get(srv.URL + "/v1/auth/verify/" + token)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = http.Get(srv.URL + "/v1/auth/verify/" + token)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("login emite access + refresh", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/v1/auth/login", map[string]string{
			"username": username, "password": pass,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decode(t, resp, &tokens)
		require.NotEmpty(t, tokens.AccessToken)
		require.NotEmpty(t, tokens.RefreshToken)
		require.Equal(t, username, tokens.Username)

		exp, err := time.Parse(time.RFC3339, tokens.ExpiresAt)
		require.NoError(t, err)
		require.True(t, exp.After(time.Now()))
	})

	t.Run("password incorrecta => 401", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/v1/auth/login", map[string]string{
			"username": username, "password": "equivocada",
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("/v1/me con bearer", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var me struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		}
		decode(t, resp, &me)
		require.Equal(t, username, me.Username)
		require.Equal(t, email, me.Email)
	})

	t.Run("/v1/me sin bearer => 401", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/me")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh devuelve access nuevo y el mismo refresh", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/v1/auth/refresh", map[string]string{
			"refreshToken": tokens.RefreshToken, "username": username,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got tokenResp
		decode(t, resp, &got)
		require.NotEmpty(t, got.AccessToken)
		require.Equal(t, tokens.RefreshToken, got.RefreshToken, "el refresh no rota")
	})

	t.Run("logout revoca el refresh", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/v1/auth/logout", map[string]string{
			"refreshToken": tokens.RefreshToken,
		})
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// el refresh revocado deja de servir
		resp = postJSON(t, srv.URL+"/v1/auth/refresh", map[string]string{
			"refreshToken": tokens.RefreshToken, "username": username,
		})
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		// logout repetido sigue siendo 200
		resp = postJSON(t, srv.URL+"/v1/auth/logout", map[string]string{
			"refreshToken": tokens.RefreshToken,
		})
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestAuthFlow_SignupDuplicate(t *testing.T) {
	srv, _ := newTestServer(t, time.Minute)

	body := map[string]string{"username": "bob", "email": "bob@example.com", "password": "password123"}
	resp := postJSON(t, srv.URL+"/v1/auth/signup", body)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/v1/auth/signup", body)
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAuthFlow_ExpiredAccessButRefreshWorks(t *testing.T) {
	// TTL negativo: todos los access salen vencidos, el refresh sigue vivo
	srv, mailer := newTestServer(t, -time.Second)

	resp := postJSON(t, srv.URL+"/v1/auth/signup", map[string]string{
		"username": "carol", "email": "carol@example.com", "password": "password123",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	r, err := http.Get(srv.URL + "/v1/auth/verify/" + mailer.verifyToken(t))
	require.NoError(t, err)
	r.Body.Close()

	var tokens tokenResp
	resp = postJSON(t, srv.URL+"/v1/auth/login", map[string]string{
		"username": "carol", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &tokens)

	// access vencido => /v1/me 401
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	meResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	meResp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, meResp.StatusCode)

	// pero el refresh emite uno nuevo sin pedir credenciales
	resp = postJSON(t, srv.URL+"/v1/auth/refresh", map[string]string{
		"refreshToken": tokens.RefreshToken, "username": "carol",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthAndJWKS(t *testing.T) {
	srv, _ := newTestServer(t, time.Minute)

	for _, path := range []string{"/healthz", "/readyz", "/.well-known/jwks.json"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(srv.URL + "/.well-known/jwks.json")
	require.NoError(t, err)
	var doc struct {
		Keys []map[string]any `json:"keys"`
	}
	decode(t, resp, &doc)
	require.Len(t, doc.Keys, 1)
	require.Equal(t, "OKP", doc.Keys[0]["kty"])
}
