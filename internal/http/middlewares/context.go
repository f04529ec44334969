package middlewares

import (
	"context"

	"github.com/dropDatabas3/reddgate/internal/store/core"
)

type ctxKey string

const (
	ctxUserKey      ctxKey = "user"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithUser liga la identidad autenticada al contexto del request.
// La identidad vive SOLO lo que dura el request: nunca en una global.
func WithUser(ctx context.Context, u *core.User) context.Context {
	return context.WithValue(ctx, ctxUserKey, u)
}

// UserFrom devuelve la identidad del contexto, o nil si el request es anónimo.
func UserFrom(ctx context.Context) *core.User {
	if v := ctx.Value(ctxUserKey); v != nil {
		if u, ok := v.(*core.User); ok {
			return u
		}
	}
	return nil
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID devuelve el request ID del contexto, o "".
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
