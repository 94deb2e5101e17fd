package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims represents the identity claims carried by a bearer token.
// Tokens are issued by the external identity provider; this package only
// needs to verify them and extract the actor.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Verifier validates a bearer token and returns its claims.
type Verifier interface {
	Verify(tokenString string) (*Claims, error)
}

// Manager verifies RS256 tokens against the identity provider's public key.
// When constructed with NewManager it also holds a private key and can mint
// tokens, which stands in for the identity provider in development and tests.
type Manager struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	tokenTTL   time.Duration
}

// NewManager creates a Manager with a freshly generated RSA key pair.
// Intended for development and tests where no real identity provider exists.
func NewManager(issuer string, tokenTTL time.Duration) (*Manager, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	return &Manager{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}, nil
}

// NewVerifier creates a verify-only Manager from a PEM-encoded RSA public key
// published by the identity provider.
func NewVerifier(publicKeyPEM []byte, issuer string) (*Manager, error) {
	block, _ := pem.Decode(publicKeyPEM)
	if block == nil {
		return nil, errors.New("failed to decode PEM public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}

	return &Manager{
		publicKey: rsaPub,
		issuer:    issuer,
	}, nil
}

// Mint creates a signed token for the given identity. Only available on
// Managers created with NewManager.
func (m *Manager) Mint(userID, email, username string) (string, error) {
	if m.privateKey == nil {
		return "", errors.New("manager has no signing key")
	}

	now := time.Now()
	ttl := m.tokenTTL
	// Zero means unset; a negative TTL mints an already-expired token.
	if ttl == 0 {
		ttl = time.Hour
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   userID,
		Email:    email,
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(m.privateKey)
}

// Verify validates a token string and returns its claims.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.publicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, ErrInvalidToken
	}

	// Some identity providers put the user id only in the subject.
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}

	return claims, nil
}

// Ensure interface is satisfied at compile time.
var _ Verifier = (*Manager)(nil)
