package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrForbidden    = errors.New("forbidden")
)

// Claims are the bearer token claims the service relies on. RestaurantID scopes staff tokens to
// one restaurant; admins may leave it empty.
type Claims struct {
	SessionID    string   `json:"sid"`
	Roles        []string `json:"roles"`
	RestaurantID string   `json:"restaurantId,omitempty"`
	jwt.RegisteredClaims
}

type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

type JWTValidator struct {
	secret    []byte
	publicKey *rsa.PublicKey
	now       func() time.Time
}

// NewJWTValidator validates RS256 tokens when publicKeyPEM parses, HS256 tokens signed with
// secret otherwise.
func NewJWTValidator(secret, publicKeyPEM string) *JWTValidator {
	v := &JWTValidator{
		secret: []byte(strings.TrimSpace(secret)),
		now:    time.Now,
	}
	if strings.TrimSpace(publicKeyPEM) != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			slog.Warn("jwt public key ignored", slog.Any("error", err))
		} else {
			v.publicKey = key
		}
	}
	return v
}

func (v *JWTValidator) Validate(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	if v.publicKey == nil && len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: jwt key not configured", ErrInvalidToken)
	}

	claims := &Claims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if v.publicKey != nil {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v, expected RS256", t.Header["alg"])
			}
			return v.publicKey, nil
		}
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithLeeway(5*time.Second), jwt.WithTimeFunc(v.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsedToken.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	if claims.SessionID == "" {
		claims.SessionID = claims.ID
	}
	if claims.SessionID == "" {
		if claims.ExpiresAt != nil {
			claims.SessionID = fmt.Sprintf("%s:%d", claims.Subject, claims.ExpiresAt.Unix())
		} else {
			claims.SessionID = claims.Subject
		}
	}
	for i, role := range claims.Roles {
		claims.Roles[i] = strings.ToLower(strings.TrimSpace(role))
	}
	return claims, nil
}
