package middlewares

import (
	"context"
	"net/http"
	"strings"

	httpx "github.com/dropDatabas3/reddgate/internal/http"
	jwtx "github.com/dropDatabas3/reddgate/internal/jwt"
	"github.com/dropDatabas3/reddgate/internal/observability/logger"
	"github.com/dropDatabas3/reddgate/internal/store/core"
)

// identityLookup materializa el subject del token en un usuario completo.
type identityLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*core.User, error)
}

// OptionalAuth es el gate por-request: extrae el bearer del Authorization,
// lo verifica y liga la identidad al contexto. NO rechaza nada:
//   - sin header, o header sin prefijo "Bearer " => sigue anónimo
//     (un header sin prefijo no se pasa crudo al verificador)
//   - token inválido/vencido => sigue anónimo
//
// El rechazo es responsabilidad de la autorización del endpoint (RequireUser).
func OptionalAuth(keys *jwtx.KeySet, iss string, users identityLookup) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims, err := jwtx.ParseEdDSA(raw, keys, iss)
			if err != nil {
				// Token inválido pero el gate es fail-open: anónimo
				logger.From(r.Context()).Debug("bearer rejected", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			sub := jwtx.Subject(claims)
			if sub == "" {
				next.ServeHTTP(w, r)
				return
			}
			u, err := users.GetUserByUsername(r.Context(), sub)
			if err != nil {
				// El subject ya no existe: anónimo
				logger.From(r.Context()).Debug("subject not found", logger.Username(sub))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireUser exige identidad ligada al contexto. Usar después de OptionalAuth.
func RequireUser() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFrom(r.Context()) == nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "se requiere un bearer token válido")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
