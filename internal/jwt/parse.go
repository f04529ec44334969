package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Taxonomía de verificación. Para el caller todas significan "no autenticado";
// se distinguen para logs y tests.
var (
	ErrMalformed    = errors.New("malformed_token")
	ErrBadSignature = errors.New("bad_signature")
	ErrExpired      = errors.New("token_expired")
)

// ParseEdDSA valida firma (EdDSA) contra la pública del KeySet, chequea iss
// (si expectedIss != "") y exp/nbf. Devuelve las claims como map[string]any.
// La extracción del subject SOLO existe por esta vía: nunca se leen claims de
// un token sin verificar.
func ParseEdDSA(token string, keys *KeySet, expectedIss string) (map[string]any, error) {
	return ParseEdDSAAt(token, keys, expectedIss, time.Now())
}

// ParseEdDSAAt es ParseEdDSA con reloj explícito (tests de expiración).
func ParseEdDSAAt(token string, keys *KeySet, expectedIss string, at time.Time) (map[string]any, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		if keys == nil || len(keys.Pub) == 0 {
			return nil, ErrNoKeys
		}
		return keys.Pub, nil
	}

	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{"EdDSA"}),
		jwtv5.WithTimeFunc(func() time.Time { return at }),
		jwtv5.WithExpirationRequired(),
	}
	if expectedIss != "" {
		opts = append(opts, jwtv5.WithIssuer(expectedIss))
	}

	tok, err := jwtv5.Parse(token, keyfunc, opts...)
	if err != nil {
		return nil, classify(err)
	}
	if !tok.Valid {
		return nil, ErrBadSignature
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrMalformed
	}
	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	return out, nil
}

// classify mapea los errores de jwt/v5 a nuestra taxonomía.
func classify(err error) error {
	switch {
	case errors.Is(err, jwtv5.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwtv5.ErrTokenSignatureInvalid),
		errors.Is(err, jwtv5.ErrTokenUnverifiable),
		errors.Is(err, jwtv5.ErrTokenInvalidIssuer),
		errors.Is(err, jwtv5.ErrTokenNotValidYet),
		errors.Is(err, jwtv5.ErrTokenRequiredClaimMissing):
		return ErrBadSignature
	default:
		return ErrBadSignature
	}
}

// Subject extrae "sub" de claims ya verificadas.
func Subject(claims map[string]any) string {
	if s, ok := claims["sub"].(string); ok {
		return s
	}
	return ""
}
