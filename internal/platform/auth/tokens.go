package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clinic/records/internal/platform/apperr"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	jwt.RegisteredClaims
	Email     string    `json:"email"`
	TokenType TokenType `json:"token_type"`
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenIssuer signs and verifies HS256 access and refresh tokens.
type TokenIssuer struct {
	key        []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(key []byte, issuer string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		key:        key,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair returns a fresh access and refresh token for the account.
func (t *TokenIssuer) IssuePair(accountID uuid.UUID, email string) (TokenPair, error) {
	access, err := t.sign(accountID, email, AccessToken, t.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.sign(accountID, email, RefreshToken, t.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess returns a new access token only.
func (t *TokenIssuer) IssueAccess(accountID uuid.UUID, email string) (string, error) {
	return t.sign(accountID, email, AccessToken, t.accessTTL)
}

func (t *TokenIssuer) sign(accountID uuid.UUID, email string, typ TokenType, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			Issuer:    t.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:     email,
		TokenType: typ,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Parse verifies tokenStr and checks that it is of the wanted type. Every
// failure is reported as apperr.ErrUnauthorized.
func (t *TokenIssuer) Parse(tokenStr string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, apperr.Newf(apperr.ErrUnauthorized, "token is invalid or expired")
	}
	if claims.TokenType != want {
		return nil, apperr.Newf(apperr.ErrUnauthorized, "token has wrong type")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, apperr.Newf(apperr.ErrUnauthorized, "token contained no recognizable user identification")
	}
	return claims, nil
}

// ResolveSigningKey decodes a hex signing key, or generates a random 32-byte
// key when hexKey is empty. The second return value is true when a random
// key was generated.
func ResolveSigningKey(hexKey string) ([]byte, bool, error) {
	if hexKey != "" {
		decoded, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, false, fmt.Errorf("invalid JWT_SIGNING_KEY hex value: %w", err)
		}
		return decoded, false, nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("generate random signing key: %w", err)
	}
	return key, true, nil
}
