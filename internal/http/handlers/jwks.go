package handlers

import (
	"net/http"

	"github.com/dropDatabas3/reddgate/internal/app"
)

// NewJWKSHandler publica la clave de verificación en formato JWKS.
// Solo material público: la privada nunca sale del proceso.
func NewJWKSHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=300")
		_, _ = w.Write(c.Issuer.JWKSJSON())
	}
}
