package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/reddgate/internal/app"
	"github.com/dropDatabas3/reddgate/internal/email"
	httpx "github.com/dropDatabas3/reddgate/internal/http"
	"github.com/dropDatabas3/reddgate/internal/observability/logger"
	"github.com/dropDatabas3/reddgate/internal/security/password"
	"github.com/dropDatabas3/reddgate/internal/store/core"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewSignupHandler registra una cuenta nueva, deshabilitada hasta que el
// usuario active vía el link del mail de verificación.
func NewSignupHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)

		if req.Username == "" || req.Password == "" || req.Email == "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "username, email y password son obligatorios")
			return
		}
		if len(req.Username) > 64 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "username demasiado largo")
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email inválido")
			return
		}
		if len(req.Password) < 8 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "password debe tener al menos 8 caracteres")
			return
		}

		phc, err := password.Hash(password.Default, req.Password)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo procesar el registro")
			return
		}

		u := &core.User{
			ID:           uuid.New(),
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: phc,
			Enabled:      false,
			CreatedAt:    time.Now().UTC(),
		}
		if err := c.Store.CreateUser(r.Context(), u); err != nil {
			if errors.Is(err, core.ErrConflict) {
				httpx.WriteError(w, http.StatusConflict, "conflict", "el username o email ya está registrado")
				return
			}
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo crear la cuenta")
			return
		}

		vt := &core.VerificationToken{
			Token:     uuid.NewString(),
			UserID:    u.ID,
			CreatedAt: time.Now().UTC(),
		}
		if err := c.Store.InsertVerificationToken(r.Context(), vt); err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo crear el token de verificación")
			return
		}

		// El mail no bloquea el registro: si falla queda en el log y el
		// usuario puede pedir reenvío.
		subject, htmlBody, textBody, err := email.BuildActivation(c.Cfg.Server.PublicBaseURL, vt.Token)
		if err == nil {
			err = c.Mailer.Send(u.Email, subject, htmlBody, textBody)
		}
		if err != nil {
			logger.From(r.Context()).Warn("activation mail failed",
				logger.Username(u.Username), logger.Err(err))
		}

		httpx.WriteJSON(w, http.StatusCreated, map[string]string{
			"message": "registro exitoso, revisá tu mail para activar la cuenta",
		})
	}
}
