package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tdnguyen-dev/classroom-go-api/internal/utils"
)

// JWTProtected validates HMAC-signed bearer tokens and exposes the subject
// and role to downstream handlers as the "user_id" and "user_role" locals.
// Token issuance belongs to the identity provider; this API only verifies.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get("Authorization"))
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "missing or malformed authorization header")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		if userID, ok := subjectID(claims); ok {
			c.Locals("user_id", userID)
		}
		if role := roleClaim(claims); role != "" {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// subjectID accepts the common claim spellings for the account id. Numeric
// claims arrive as float64 after JSON decoding.
func subjectID(claims jwt.MapClaims) (uint, bool) {
	for _, key := range []string{"sub", "user_id", "id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case float64:
			if v >= 0 {
				return uint(v), true
			}
		case string:
			if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
				return uint(parsed), true
			}
		}
	}
	return 0, false
}

func roleClaim(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		switch v := claims[key].(type) {
		case string:
			if role := strings.ToLower(strings.TrimSpace(v)); role != "" {
				return role
			}
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					if role := strings.ToLower(strings.TrimSpace(s)); role != "" {
						return role
					}
				}
			}
		}
	}
	return ""
}
