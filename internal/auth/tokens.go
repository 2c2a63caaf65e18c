package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-salon/internal/common"
)

// Tokens issues and verifies the access tokens handed to staff terminals
// after a successful PIN login.
type Tokens struct {
	secret    []byte
	issuer    string
	audience  string
	ttl       time.Duration
	clockSkew time.Duration
	signer    jwa.SignatureAlgorithm
	now       func() time.Time
}

// Config holds the token settings sourced from the environment.
type Config struct {
	Secret    string
	Issuer    string
	Audience  string
	TTL       time.Duration
	ClockSkew time.Duration
}

func NewTokens(cfg Config) (*Tokens, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("auth: secret is required")
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "salon-api"
	}
	audience := cfg.Audience
	if audience == "" {
		audience = "salon-terminal"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	skew := cfg.ClockSkew
	if skew < 0 {
		skew = 0
	}
	return &Tokens{
		secret:    []byte(cfg.Secret),
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
		clockSkew: skew,
		signer:    jwa.HS256,
		now:       time.Now,
	}, nil
}

// WithNow overrides the clock, used by tests.
func (t *Tokens) WithNow(now func() time.Time) {
	if now != nil {
		t.now = now
	}
}

// Sign returns a signed access token for the staff member.
func (t *Tokens) Sign(staffID string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	token, err := jwt.NewBuilder().
		Subject(staffID).
		Issuer(t.issuer).
		Audience([]string{t.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-t.clockSkew)).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(t.signer, t.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

// Parse verifies a token and returns the staff id it was issued to.
func (t *Tokens) Parse(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", common.Unauthorized("missing token", nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return "", common.Unauthorized("invalid token", err)
	}
	if algorithm != t.signer {
		return "", common.Unauthorized("invalid token", fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, t.secret))
	if err != nil {
		return "", common.Unauthorized("invalid token", err)
	}
	options := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(t.now)),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
	}
	if t.clockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(t.clockSkew))
	}
	if err := jwt.Validate(parsed, options...); err != nil {
		return "", common.Unauthorized("invalid token", err)
	}
	return parsed.Subject(), nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", errors.New("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}
