package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/collabinvest/cil-storefront/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingMethod = jwt.SigningMethodHS256

func checkJWTConfig(cfg config.JWTConfig) error {
	switch {
	case cfg.Secret == "":
		return errors.New("jwt secret is required")
	case cfg.Issuer == "":
		return errors.New("jwt issuer is required")
	case cfg.TTL() <= 0:
		return errors.New("jwt ttl must be positive")
	}
	return nil
}

// MintAdminToken signs a back-office token. The jti is the session id, so
// logging out or an idle sweep revokes the token before it expires.
func MintAdminToken(cfg config.JWTConfig, now time.Time, p AdminTokenPayload) (string, error) {
	if err := checkJWTConfig(cfg); err != nil {
		return "", err
	}
	username := strings.TrimSpace(p.Username)
	if username == "" {
		return "", errors.New("username is required")
	}
	sessionID := strings.TrimSpace(p.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	token := jwt.NewWithClaims(signingMethod, AdminClaims{
		Username: username,
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    cfg.Issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL())),
		},
	})
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	return signed, nil
}

// ParseAdminToken verifies signature, issuer and expiry. It does not consult
// the session store.
func ParseAdminToken(cfg config.JWTConfig, raw string) (*AdminClaims, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	claims := &AdminClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}); err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return nil, fmt.Errorf("token role %q is not admin", claims.Role)
	}
	return claims, nil
}
