// Package auth resolves the caller identity carried by a bearer token.
//
// Resolution is total: a missing, malformed, badly signed or expired token
// all resolve to "no identity". Callers that need authentication decide
// what absence means.
package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"postboard/app/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingToken  = errors.New("missing token")
	errMissingClaim  = errors.New("token has no id claim")
	errMalformedAuth = errors.New("authorization header is not \"<scheme> <token>\"")
)

// Resolver verifies HS256 tokens against a process-wide secret.
type Resolver struct {
	secret []byte
	parser *jwt.Parser
	logger *slog.Logger
}

// NewResolver builds a Resolver. The secret is copied.
func NewResolver(secret string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithJSONNumber(),
		),
		logger: logger,
	}
}

// Resolve returns the identity in header, or false when there is none.
func (r *Resolver) Resolve(header string) (models.Identity, bool) {
	if strings.TrimSpace(header) == "" {
		return models.Identity{}, false
	}
	id, err := r.verify(header)
	if err != nil {
		r.logger.Debug("credential rejected", "event", "auth_rejected", "reason", err.Error())
		return models.Identity{}, false
	}
	return id, true
}

func (r *Resolver) verify(header string) (models.Identity, error) {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return models.Identity{}, errMalformedAuth
	}
	raw := parts[1]
	if raw == "" {
		return models.Identity{}, errMissingToken
	}

	claims := jwt.MapClaims{}
	if _, err := r.parser.ParseWithClaims(raw, claims, r.key); err != nil {
		return models.Identity{}, err
	}

	id := claimString(claims, "id")
	if id == "" {
		id = claimString(claims, "sub")
	}
	if id == "" {
		return models.Identity{}, errMissingClaim
	}
	return models.NewIdentity(id), nil
}

func (r *Resolver) key(token *jwt.Token) (interface{}, error) {
	if len(r.secret) == 0 {
		return nil, errors.New("verification secret is not configured")
	}
	return r.secret, nil
}

func claimString(claims jwt.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
