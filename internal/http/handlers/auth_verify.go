package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/reddgate/internal/app"
	httpx "github.com/dropDatabas3/reddgate/internal/http"
	"github.com/dropDatabas3/reddgate/internal/observability/logger"
	"github.com/dropDatabas3/reddgate/internal/store/core"
)

// NewVerifyHandler consume el token de activación y habilita la cuenta.
// El token es de un solo uso: el segundo GET devuelve 404.
func NewVerifyHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(chi.URLParam(r, "token"))
		if token == "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "falta el token de verificación")
			return
		}

		userID, err := c.Store.UseVerificationToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				httpx.WriteError(w, http.StatusNotFound, "invalid_token", "token de verificación inválido o ya usado")
				return
			}
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo verificar la cuenta")
			return
		}

		if err := c.Store.EnableUser(r.Context(), userID); err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo habilitar la cuenta")
			return
		}

		logger.From(r.Context()).Info("account activated", logger.UserID(userID.String()))
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "cuenta activada",
		})
	}
}
