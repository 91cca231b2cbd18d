package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the registered claims carried by an access token. Subject is
// the user id.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// KeyConfig describes the signing key set. ActiveSecret signs new tokens;
// PreviousSecrets are only accepted for verification so tokens issued before
// a rotation keep working until they expire.
type KeyConfig struct {
	ActiveKeyID     string
	ActiveSecret    string
	PreviousSecrets map[string]string
	Issuer          string
	AccessTTL       time.Duration
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	activeKID string
	keys      map[string][]byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenManager(cfg KeyConfig) (*TokenManager, error) {
	kid := strings.TrimSpace(cfg.ActiveKeyID)
	secret := strings.TrimSpace(cfg.ActiveSecret)
	if kid == "" || secret == "" {
		return nil, errors.New("active signing key is required")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}

	keys := map[string][]byte{kid: []byte(secret)}
	for prevKID, prevSecret := range cfg.PreviousSecrets {
		if prevKID == kid {
			return nil, fmt.Errorf("key id %q is both active and previous", kid)
		}
		keys[prevKID] = []byte(prevSecret)
	}

	return &TokenManager{
		activeKID: kid,
		keys:      keys,
		issuer:    cfg.Issuer,
		ttl:       cfg.AccessTTL,
		now:       time.Now,
	}, nil
}

func (m *TokenManager) Issue(userID, username string) (Token, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = m.activeKID
	signed, err := token.SignedString(m.keys[m.activeKID])
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{AccessToken: signed, TokenType: "bearer", ExpiresAt: expiresAt}, nil
}

// Parse verifies signature, expiry and issuer. Tokens without a kid header
// are checked against the active key only.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, m.keyFunc, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *TokenManager) keyFunc(token *jwt.Token) (any, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		kid = m.activeKID
	}
	key, ok := m.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return key, nil
}
