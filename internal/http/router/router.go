// Package router arma el árbol de rutas y la cadena de middlewares.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/reddgate/internal/app"
	httpx "github.com/dropDatabas3/reddgate/internal/http"
	"github.com/dropDatabas3/reddgate/internal/http/handlers"
	"github.com/dropDatabas3/reddgate/internal/http/middlewares"
	"github.com/dropDatabas3/reddgate/internal/rate"
)

// Deps agrupa lo que el router necesita además del Container.
type Deps struct {
	Container *app.Container

	// Limiters por flujo; nil deshabilita el límite de ese flujo.
	LoginLimiter  rate.Limiter
	SignupLimiter rate.Limiter

	// Handler de /metrics; nil no registra la ruta.
	MetricsHandler http.Handler
}

// New construye el handler raíz del servicio.
func New(d Deps) http.Handler {
	c := d.Container
	r := chi.NewRouter()

	// Infra
	r.Get("/healthz", handlers.NewHealthzHandler(c))
	r.Get("/readyz", handlers.NewReadyzHandler(c))
	r.Get("/.well-known/jwks.json", handlers.NewJWKSHandler(c))
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	// Auth
	r.Route("/v1/auth", func(r chi.Router) {
		r.With(middlewares.WithRateLimit(d.SignupLimiter, "signup")).
			Post("/signup", handlers.NewSignupHandler(c))
		r.Get("/verify/{token}", handlers.NewVerifyHandler(c))
		r.With(middlewares.WithRateLimit(d.LoginLimiter, "login")).
			Post("/login", handlers.NewLoginHandler(c))
		r.Post("/refresh", handlers.NewRefreshHandler(c))
		r.Post("/logout", handlers.NewLogoutHandler(c))
	})

	// Recursos protegidos
	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequireUser())
		r.Get("/v1/me", handlers.NewMeHandler(c))
	})

	// Cadena global, de afuera hacia adentro: recover primero para cubrir
	// todo, el gate de auth al final, pegado a las rutas.
	return middlewares.Chain(r,
		middlewares.WithRecover(),
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
		httpx.WithHTTPMetrics,
		middlewares.WithSecurityHeaders(),
		middlewares.WithCORS(c.Cfg.Server.CORSAllowedOrigins),
		middlewares.OptionalAuth(c.Keys, c.Issuer.Iss, c.Store),
	)
}
