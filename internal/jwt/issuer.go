package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var ErrNoKeys = errors.New("no_signing_keys")

// Issuer firma access tokens con el KeySet cargado en el arranque.
type Issuer struct {
	Iss       string        // "iss"
	Keys      *KeySet       // inmutable, compartido con el verificador
	AccessTTL time.Duration // TTL del access token (config jwt.access_ttl)

	// now es inyectable para tests de expiración; nil => time.Now.
	now func() time.Time
}

func NewIssuer(iss string, keys *KeySet, accessTTL time.Duration) *Issuer {
	return &Issuer{Iss: iss, Keys: keys, AccessTTL: accessTTL}
}

func (i *Issuer) clock() time.Time {
	if i.now != nil {
		return i.now().UTC()
	}
	return time.Now().UTC()
}

// IssueAccess emite un access token firmado para sub: sub/iat/nbf/exp.
// Devuelve el JWT compacto y su expiración.
func (i *Issuer) IssueAccess(sub string) (string, time.Time, error) {
	if i.Keys == nil || len(i.Keys.Priv) == 0 {
		return "", time.Time{}, ErrNoKeys
	}
	now := i.clock()
	exp := now.Add(i.AccessTTL)

	claims := jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": sub,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = i.Keys.KID
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.Keys.Priv)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// JWKSJSON expone el JWKS actual.
func (i *Issuer) JWKSJSON() []byte {
	return i.Keys.JWKSJSON()
}
