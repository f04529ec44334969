package handlers

import (
	"net/http"
	"time"

	"github.com/dropDatabas3/reddgate/internal/app"
	httpx "github.com/dropDatabas3/reddgate/internal/http"
	"github.com/dropDatabas3/reddgate/internal/http/middlewares"
)

type meResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// NewMeHandler devuelve la identidad del request. Protegido por RequireUser,
// así que acá el usuario siempre está ligado al contexto.
func NewMeHandler(_ *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := middlewares.UserFrom(r.Context())
		if u == nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "se requiere un bearer token válido")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, meResponse{
			ID:        u.ID.String(),
			Username:  u.Username,
			Email:     u.Email,
			CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
}
