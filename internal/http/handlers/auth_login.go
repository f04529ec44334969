package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/reddgate/internal/app"
	httpx "github.com/dropDatabas3/reddgate/internal/http"
	"github.com/dropDatabas3/reddgate/internal/observability/logger"
	"github.com/dropDatabas3/reddgate/internal/security/password"
	"github.com/dropDatabas3/reddgate/internal/store/core"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse es la respuesta común de login y refresh.
type authResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    string `json:"expiresAt"` // RFC3339
	Username     string `json:"username"`
}

// NewLoginHandler valida credenciales y emite el par access + refresh.
// Username inexistente y password incorrecta responden lo mismo: 401.
func NewLoginHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "username y password son obligatorios")
			return
		}

		u, err := c.Store.GetUserByUsername(r.Context(), req.Username)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				httpx.ObserveLogin("invalid_credentials")
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "usuario o password incorrectos")
				return
			}
			httpx.ObserveLogin("error")
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo autenticar")
			return
		}

		if !password.Verify(req.Password, u.PasswordHash) {
			httpx.ObserveLogin("invalid_credentials")
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "usuario o password incorrectos")
			return
		}
		if !u.Enabled {
			httpx.ObserveLogin("disabled")
			httpx.WriteError(w, http.StatusForbidden, "account_disabled", "la cuenta no está activada, revisá tu mail")
			return
		}

		access, exp, err := c.Issuer.IssueAccess(u.Username)
		if err != nil {
			httpx.ObserveLogin("error")
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo emitir el token")
			return
		}
		refresh, err := c.Refresh.Generate(r.Context())
		if err != nil {
			httpx.ObserveLogin("error")
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo emitir el refresh token")
			return
		}

		httpx.ObserveLogin("ok")
		httpx.ObserveTokenIssued("login")
		logger.From(r.Context()).Info("login ok", logger.Username(u.Username))

		httpx.WriteJSON(w, http.StatusOK, authResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresAt:    exp.UTC().Format(time.RFC3339),
			Username:     u.Username,
		})
	}
}
