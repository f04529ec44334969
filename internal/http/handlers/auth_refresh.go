package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/reddgate/internal/app"
	httpx "github.com/dropDatabas3/reddgate/internal/http"
	"github.com/dropDatabas3/reddgate/internal/observability/logger"
	"github.com/dropDatabas3/reddgate/internal/store/core"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
}

// NewRefreshHandler canjea un refresh token válido por un access token nuevo.
// El refresh token NO rota: la respuesta devuelve el mismo valor recibido,
// que sigue siendo válido hasta logout (o hasta su max-age, si está activo).
func NewRefreshHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if req.RefreshToken == "" || req.Username == "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refreshToken y username son obligatorios")
			return
		}

		if err := c.Refresh.Validate(r.Context(), req.RefreshToken); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				httpx.ObserveRefreshDenied()
				httpx.WriteError(w, http.StatusUnauthorized, "refresh_token_not_found", "refresh token inválido o revocado")
				return
			}
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo validar el refresh token")
			return
		}

		u, err := c.Store.GetUserByUsername(r.Context(), req.Username)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				httpx.ObserveRefreshDenied()
				httpx.WriteError(w, http.StatusUnauthorized, "refresh_token_not_found", "usuario desconocido")
				return
			}
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo validar el refresh token")
			return
		}
		if !u.Enabled {
			httpx.ObserveRefreshDenied()
			httpx.WriteError(w, http.StatusForbidden, "account_disabled", "la cuenta no está activada")
			return
		}

		access, exp, err := c.Issuer.IssueAccess(u.Username)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo emitir el token")
			return
		}

		httpx.ObserveTokenIssued("refresh")
		logger.From(r.Context()).Info("token refreshed", logger.Username(u.Username))

		httpx.WriteJSON(w, http.StatusOK, authResponse{
			AccessToken:  access,
			RefreshToken: req.RefreshToken,
			ExpiresAt:    exp.UTC().Format(time.RFC3339),
			Username:     u.Username,
		})
	}
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// NewLogoutHandler revoca el refresh token. Idempotente: revocar un token
// que ya no existe responde 200 igual.
func NewLogoutHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logoutRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if req.RefreshToken == "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refreshToken es obligatorio")
			return
		}

		if err := c.Refresh.Revoke(r.Context(), req.RefreshToken); err != nil && !errors.Is(err, core.ErrNotFound) {
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo cerrar la sesión")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "refresh token revocado",
		})
	}
}
