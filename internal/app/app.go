package app

import (
	"github.com/dropDatabas3/reddgate/internal/config"
	"github.com/dropDatabas3/reddgate/internal/email"
	"github.com/dropDatabas3/reddgate/internal/jwt"
	"github.com/dropDatabas3/reddgate/internal/store"
	"github.com/dropDatabas3/reddgate/internal/store/core"
)

// Container agrupa las dependencias que comparten los handlers.
// Se arma una vez en main y se pasa explícito: nada de estado global.
type Container struct {
	Cfg     *config.Config
	Store   core.Repository
	Keys    *jwt.KeySet
	Issuer  *jwt.Issuer
	Refresh *store.RefreshTokens
	Mailer  email.Sender
}
