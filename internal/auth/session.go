// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers any token that fails verification: bad signature,
// wrong algorithm, expired, or malformed claims.
var ErrInvalidToken = errors.New("invalid session token")

// CookieName is the cookie carrying the session token.
const CookieName = "auth_token"

// Keyring signs and verifies session tokens with an ed25519 pair. TokenTTL of
// zero issues tokens without an expiry claim.
type Keyring struct {
	priv     ed25519.PrivateKey
	pub      ed25519.PublicKey
	TokenTTL time.Duration
}

// NewKeyring generates a fresh key pair. Sessions do not survive a restart;
// guests simply get a new identity and registered users log in again.
func NewKeyring(ttl time.Duration) (*Keyring, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key pair: %w", err)
	}
	return &Keyring{priv: priv, pub: pub, TokenTTL: ttl}, nil
}

// NewKeyringFromFiles loads a persisted raw ed25519 pair, for deployments
// that need sessions to survive restarts.
func NewKeyringFromFiles(privatePath, publicPath string, ttl time.Duration) (*Keyring, error) {
	priv, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	pub, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	if len(priv) != ed25519.PrivateKeySize || len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("key files are not raw ed25519 keys")
	}
	return &Keyring{
		priv:     ed25519.PrivateKey(priv),
		pub:      ed25519.PublicKey(pub),
		TokenTTL: ttl,
	}, nil
}

// MintToken issues a signed token whose subject is the user ID.
func (k *Keyring) MintToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": time.Now().Unix(),
	}
	if k.TokenTTL != 0 {
		claims["exp"] = time.Now().Add(k.TokenTTL).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(k.priv)
}

// VerifyToken checks signature and expiry and returns the subject user ID.
func (k *Keyring) VerifyToken(tokenString string) (uuid.UUID, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return k.pub, nil
	})
	if err != nil || !t.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	sub, err := t.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

// CookieMaxAge converts the TTL into the Max-Age cookie attribute; zero means
// a session cookie with no explicit age.
func (k *Keyring) CookieMaxAge() int {
	return int(k.TokenTTL.Seconds())
}
