package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
)

// APIKeyHeader authenticates service callers as administrators.
const APIKeyHeader = "X-API-Key"

// RoleAdmin is the role claim that grants administrative capability.
const RoleAdmin = "admin"

// Claims are the JWT claims accepted by Authenticate. The subject is the
// customer identity.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

// IssueToken signs an HS256 token for subject.
func IssueToken(secret, subject, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		Role:  role,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Authenticate attaches a model.Principal to every request. A bearer JWT
// identifies a customer (or an administrator through the role claim); a
// matching X-API-Key identifies an administrative service caller.
func Authenticate(cfg config.AuthConfig, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := r.Header.Get(APIKeyHeader); key != "" {
				if cfg.APIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) != 1 {
					logger.Warn().
						Str("path", r.URL.Path).
						Str("provided_key", key[:min(4, len(key))]).
						Msg("invalid API key")
					writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid API key")
					return
				}
				p := model.Principal{ID: "api-key", Admin: true}
				next.ServeHTTP(w, r.WithContext(model.WithPrincipal(r.Context(), p)))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authorization header missing")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid authorization header format")
				return
			}

			claims, err := parseToken(parts[1], cfg.JWTSecret)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("token rejected")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid token")
				return
			}

			p := model.Principal{
				ID:    claims.Subject,
				Email: claims.Email,
				Admin: claims.Role == RoleAdmin,
			}
			next.ServeHTTP(w, r.WithContext(model.WithPrincipal(r.Context(), p)))
		})
	}
}

func parseToken(raw, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// RequireAdmin rejects principals without administrative capability.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := model.PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
			return
		}
		if !p.Admin {
			writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden, "administrators only")
			return
		}
		next.ServeHTTP(w, r)
	})
}
