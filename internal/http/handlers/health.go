package handlers

import (
	"net/http"

	"github.com/dropDatabas3/reddgate/internal/app"
	httpx "github.com/dropDatabas3/reddgate/internal/http"
	jwtx "github.com/dropDatabas3/reddgate/internal/jwt"
	"github.com/dropDatabas3/reddgate/internal/observability/logger"
)

// NewHealthzHandler: liveness. Responde ok si el proceso atiende requests.
func NewHealthzHandler(_ *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// NewReadyzHandler: readiness. Chequea el storage y hace un self-check de
// firma: emite un token y lo verifica contra la clave pública cargada.
func NewReadyzHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.Store.Ping(r.Context()); err != nil {
			logger.From(r.Context()).Warn("readyz: storage ping failed", logger.Err(err))
			httpx.WriteError(w, http.StatusServiceUnavailable, "not_ready", "storage no disponible")
			return
		}

		tk, _, err := c.Issuer.IssueAccess("readyz-selfcheck")
		if err == nil {
			_, err = jwtx.ParseEdDSA(tk, c.Keys, c.Issuer.Iss)
		}
		if err != nil {
			logger.From(r.Context()).Warn("readyz: sign selfcheck failed", logger.Err(err))
			httpx.WriteError(w, http.StatusServiceUnavailable, "not_ready", "firma de tokens no disponible")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
