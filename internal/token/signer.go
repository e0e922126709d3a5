// Package token issues and verifies the signed session tokens. Signing is
// RS256: the private key stays with this service, verifiers only ever need
// the public half.
package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/amarthakur0/go-api-template/internal/domain"
)

var (
	// ErrTokenExpired means the signature checked out but the token is past
	// its expiry. Clients receiving this should attempt a refresh.
	ErrTokenExpired = errors.New("auth token expired")

	// ErrTokenInvalid covers every other verification failure: bad
	// signature, wrong issuer or audience, malformed token.
	ErrTokenInvalid = errors.New("auth token invalid")
)

// Claims is the verified content of a session token.
type Claims struct {
	UserID    int64
	Source    domain.Source
	TokenID   string
	ExpiresAt time.Time
}

// IssuedToken is the result of issuing a new session: the signed access
// token, the opaque refresh token, the token id embedded in the jti claim,
// and the absolute expiry.
type IssuedToken struct {
	AccessToken  string
	RefreshToken string
	TokenID      string
	ExpiresAt    time.Time
}

type sessionClaims struct {
	UserID int64 `json:"userId"`
	Source int   `json:"source"`
	jwt.RegisteredClaims
}

// Signer holds the process-wide signing key pair, loaded once at startup and
// injected by construction.
type Signer struct {
	privateKey   *rsa.PrivateKey
	publicKey    *rsa.PublicKey
	issuer       string
	audience     string
	webExpiry    time.Duration
	mobileExpiry time.Duration
}

// NewSigner builds a signer from PEM-encoded RSA keys.
func NewSigner(privatePEM, publicPEM []byte, issuer, audience string, webExpiry, mobileExpiry time.Duration) (*Signer, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return &Signer{
		privateKey:   privateKey,
		publicKey:    publicKey,
		issuer:       issuer,
		audience:     audience,
		webExpiry:    webExpiry,
		mobileExpiry: mobileExpiry,
	}, nil
}

// NewSignerFromFiles loads the key pair from PEM files.
func NewSignerFromFiles(privatePath, publicPath, issuer, audience string, webExpiry, mobileExpiry time.Duration) (*Signer, error) {
	privatePEM, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key %s: %w", privatePath, err)
	}

	publicPEM, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key %s: %w", publicPath, err)
	}

	return NewSigner(privatePEM, publicPEM, issuer, audience, webExpiry, mobileExpiry)
}

func (s *Signer) expiryFor(source domain.Source) time.Duration {
	if source == domain.SourceMobile {
		return s.mobileExpiry
	}
	return s.webExpiry
}

// Issue creates a fresh signed access token plus a new random refresh token
// and token id. The token id lands in the jti claim so the authenticator can
// detect superseded tokens independently of the token string.
func (s *Signer) Issue(userID int64, source domain.Source) (*IssuedToken, error) {
	now := time.Now()
	// The exp claim carries whole seconds, so the returned expiry is
	// truncated to match: callers persist it and later compare it against
	// the round-tripped claim.
	expiresAt := now.Add(s.expiryFor(source)).Truncate(time.Second)
	tokenID := uuid.New().String()
	refreshToken := uuid.New().String()

	claims := sessionClaims{
		UserID: userID,
		Source: int(source),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign auth token: %w", err)
	}

	return &IssuedToken{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenID:      tokenID,
		ExpiresAt:    expiresAt,
	}, nil
}

// Verify checks signature, issuer, audience and expiry. Expiry failures are
// reported as ErrTokenExpired because clients handle them differently from
// plain invalid tokens; everything else collapses into ErrTokenInvalid.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &sessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return s.publicKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.UserID <= 0 || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}

	return &Claims{
		UserID:    claims.UserID,
		Source:    domain.Source(claims.Source),
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
