package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/alo-api/internal/dto"
	"github.com/noah-isme/alo-api/internal/utils"
)

const (
	// LocalUserID holds the caller's external user id.
	LocalUserID = "user_id"
	// LocalIdentity holds the caller's dto.Identity.
	LocalIdentity = "identity"

	unauthorizedCode    = "UNAUTHORIZED"
	unauthorizedMessage = "authentication required"
)

// JWTProtected returns a middleware that validates HMAC-signed bearer tokens.
// Websocket upgrades may pass the token as the "token" query parameter instead.
// Every failure produces the same 401 response.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	)

	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" || secret == "" {
			return unauthorized(c)
		}

		token, err := parser.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return unauthorized(c)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c)
		}

		identity := identityFromClaims(claims)
		if identity.Subject == "" {
			return unauthorized(c)
		}

		c.Locals(LocalUserID, identity.Subject)
		c.Locals(LocalIdentity, identity)

		return c.Next()
	}
}

// CurrentIdentity returns the identity bound by JWTProtected.
func CurrentIdentity(c *fiber.Ctx) (dto.Identity, bool) {
	identity, ok := c.Locals(LocalIdentity).(dto.Identity)
	if !ok || identity.Subject == "" {
		return dto.Identity{}, false
	}
	return identity, true
}

func unauthorized(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusUnauthorized, unauthorizedCode, unauthorizedMessage)
}

func bearerToken(c *fiber.Ctx) string {
	const bearer = "bearer "

	authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authorization != "" {
		if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return ""
		}
		return strings.TrimSpace(authorization[len(bearer):])
	}

	if websocket.IsWebSocketUpgrade(c) {
		return strings.TrimSpace(c.Query("token"))
	}
	return ""
}

func identityFromClaims(claims jwt.MapClaims) dto.Identity {
	return dto.Identity{
		Subject:   firstClaim(claims, "sub", "user_id"),
		Name:      firstClaim(claims, "name", "full_name"),
		FirstName: firstClaim(claims, "first_name", "given_name"),
		LastName:  firstClaim(claims, "last_name", "family_name"),
		Username:  firstClaim(claims, "username", "preferred_username"),
		Email:     firstClaim(claims, "email", "primary_email"),
		ImageURL:  firstClaim(claims, "image_url", "picture"),
	}
}

func firstClaim(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if normalized := normalizeClaim(value); normalized != "" {
				return normalized
			}
		}
	}
	return ""
}

func normalizeClaim(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(str); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}
