package middleware

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/campusguard-backend-go/pkg/response"
)

// ContextSubject is the gin context key holding the token subject
const ContextSubject = "auth.subject"

// Auth verifies an HS256 bearer token for operator endpoints. With an empty
// secret every request is refused.
func Auth(secret string, log *slog.Logger) gin.HandlerFunc {
	if secret == "" {
		log.Warn("operator_auth_unconfigured", "reason", "JWT_SECRET is empty")
		return func(c *gin.Context) {
			response.ServiceUnavailable(c, "operator auth not configured")
			c.Abort()
		}
	}

	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			log.Debug("auth_rejected", "err", err, "client_ip", c.ClientIP())
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Next()
	}
}

// NoAuth lets every request through. Only for AUTH_DISABLED deployments.
func NoAuth(log *slog.Logger) gin.HandlerFunc {
	log.Warn("operator_auth_disabled", "reason", "AUTH_DISABLED is set")
	return func(c *gin.Context) { c.Next() }
}

// IssueToken signs an operator token valid for ttl
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
