// Package auth verifies the bearer tokens that identify users.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/elucidare/tonewise/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const defaultLeeway = 30 * time.Second

// Claims contains the verified token details that the service uses.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Verifier validates bearer tokens.
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

func parserOptions(issuer, audience string, methods []string) []jwt.ParserOption {
	options := []jwt.ParserOption{
		jwt.WithLeeway(defaultLeeway),
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		options = append(options, jwt.WithAudience(audience))
	}
	return options
}

// NewHMACVerifier creates a verifier for tokens signed with a shared secret.
func NewHMACVerifier(secret, issuer, audience string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("the token signing secret must be set")
	}
	key := []byte(secret)
	return &Verifier{
		keyfunc: func(*jwt.Token) (interface{}, error) { return key, nil },
		parser:  jwt.NewParser(parserOptions(issuer, audience, []string{jwt.SigningMethodHS256.Name})...),
	}, nil
}

// NewJWKSVerifier creates a verifier for tokens signed with keys published at a JWKS endpoint.
func NewJWKSVerifier(jwksURL, issuer, audience string) (*Verifier, error) {
	if jwksURL == "" {
		return nil, errors.New("the JWKS URL must be set")
	}
	keyProvider, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, errors.Wrap(err, "unable to initialize the JWKS key function")
	}
	methods := []string{
		jwt.SigningMethodRS256.Name,
		jwt.SigningMethodRS384.Name,
		jwt.SigningMethodRS512.Name,
		jwt.SigningMethodES256.Name,
	}
	return &Verifier{
		keyfunc: keyProvider.Keyfunc,
		parser:  jwt.NewParser(parserOptions(issuer, audience, methods)...),
	}, nil
}

// NewVerifier creates the verifier described by the configuration. A JWKS URL takes precedence over a shared
// secret.
func NewVerifier(spec *config.Specification) (*Verifier, error) {
	if spec.JWKSURL != "" {
		return NewJWKSVerifier(spec.JWKSURL, spec.JWTIssuer, spec.JWTAudience)
	}
	return NewHMACVerifier(spec.JWTSecret, spec.JWTIssuer, spec.JWTAudience)
}

// Verify parses and validates a token.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, v.keyfunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	subject, _ := mapClaims.GetSubject()
	if strings.TrimSpace(subject) == "" {
		return nil, errors.New("token missing sub")
	}
	claims := &Claims{Subject: subject}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if expiresAt, err := mapClaims.GetExpirationTime(); err == nil && expiresAt != nil {
		claims.ExpiresAt = expiresAt.Time
	}

	return claims, nil
}

// ExtractBearerToken returns the token from an Authorization header value.
func ExtractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

type ctxKey int

const claimsKey ctxKey = iota

// WithClaims stores claims in a context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims stored in a context.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}
