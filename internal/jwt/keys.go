package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/dropDatabas3/reddgate/internal/security/secretbox"
)

// ErrKeyLoad: cualquier falla al cargar el material de firma. Fatal en startup.
var ErrKeyLoad = fmt.Errorf("key_load_failed")

// KeySet es el par de claves de firma del proceso. Se carga UNA vez en el
// arranque y es inmutable: Issuer y verificador lo comparten en read-only,
// sin locking. Nunca se guarda en una variable global.
type KeySet struct {
	Priv ed25519.PrivateKey
	Pub  ed25519.PublicKey
	KID  string
	Alg  string // "EdDSA"
}

// GenerateEd25519 genera un par nuevo en memoria (CLI de claves y tests).
func GenerateEd25519() (*KeySet, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeySet{Priv: priv, Pub: pub, KID: fingerprint(pub), Alg: "EdDSA"}, nil
}

// LoadKeySet lee el archivo de claves y devuelve el KeySet.
// Si sealKey no es vacío, el archivo está sellado con secretbox y se abre con
// esa clave; si es vacío se espera PEM plano (solo dev).
// Toda falla se reporta como ErrKeyLoad: sin claves no se puede autenticar a
// nadie y el proceso debe abortar.
func LoadKeySet(path, sealKey string) (*KeySet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: leer %s: %v", ErrKeyLoad, path, err)
	}
	pemBytes := raw
	if sealKey != "" {
		k, err := secretbox.ParseKey(sealKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
		}
		pt, err := secretbox.Open(k, string(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: abrir keyfile: %v", ErrKeyLoad, err)
		}
		pemBytes = pt
	}
	return parsePEM(pemBytes)
}

func parsePEM(pemBytes []byte) (*KeySet, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("%w: PEM inválido (se espera PRIVATE KEY PKCS#8)", ErrKeyLoad)
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: pkcs8: %v", ErrKeyLoad, err)
	}
	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: la clave no es Ed25519", ErrKeyLoad)
	}
	pub := priv.Public().(ed25519.PublicKey)
	return &KeySet{Priv: priv, Pub: pub, KID: fingerprint(pub), Alg: "EdDSA"}, nil
}

// MarshalPEM serializa la privada en PKCS#8 PEM (para la CLI de claves).
func (k *KeySet) MarshalPEM() ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(k.Priv)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// fingerprint: KID determinístico a partir de la pública.
func fingerprint(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:8])
}

// ----- JWKS (serialización) -----

type jwk struct {
	Kty string `json:"kty"` // "OKP"
	Crv string `json:"crv"` // "Ed25519"
	Kid string `json:"kid"`
	Alg string `json:"alg"` // "EdDSA"
	Use string `json:"use"` // "sig"
	X   string `json:"x"`   // base64url(pub)
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// JWKSJSON devuelve el JWKS (solo la pública) en JSON.
func (k *KeySet) JWKSJSON() []byte {
	j := jwks{
		Keys: []jwk{{
			Kty: "OKP",
			Crv: "Ed25519",
			Kid: k.KID,
			Alg: k.Alg,
			Use: "sig",
			X:   base64.RawURLEncoding.EncodeToString(k.Pub),
		}},
	}
	b, _ := json.Marshal(j)
	return b
}
