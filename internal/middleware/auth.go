package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arintala/wanderplan/internal/helpers"
	"github.com/arintala/wanderplan/internal/models"
)

// signingSecret reads JWT_SECRET at call time so values loaded from .env
// after package init are honored. An unset secret refuses to sign or verify.
func signingSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return []byte(secret), nil
}

// GenerateToken signs the bearer credential for a user. The token is only
// honored while its auth_tokens row survives, so logout revokes it for real.
func GenerateToken(userID uuid.UUID) (string, error) {
	secret, err := signingSecret()
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(30 * 24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken checks the signature and expiry and returns the bound user id.
func ValidateToken(tokenStr string) (uuid.UUID, error) {
	secret, err := signingSecret()
	if err != nil {
		return uuid.Nil, err
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, jwt.ErrTokenUnverifiable
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	return uuid.Parse(raw)
}

func resolveUser(db *gorm.DB, tokenStr string) (*models.User, bool) {
	userID, err := ValidateToken(tokenStr)
	if err != nil {
		return nil, false
	}

	// The credential must still be registered; a deleted row means logout.
	var stored models.AuthToken
	if err := db.Where("key = ? AND user_id = ?", tokenStr, userID).First(&stored).Error; err != nil {
		return nil, false
	}

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// RequireAuth rejects requests without a valid, unrevoked bearer credential.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, helpers.ErrorResponse{
				Error:   helpers.HTTPStatusText(http.StatusUnauthorized),
				Message: "Missing or invalid Authorization header.",
			})
			return
		}

		user, ok := resolveUser(GetDB(c), tokenStr)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, helpers.ErrorResponse{
				Error:   helpers.HTTPStatusText(http.StatusUnauthorized),
				Message: "Invalid or expired token.",
			})
			return
		}

		c.Set("current_user", user)
		c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid credential is
// presented and lets the request through anonymously otherwise.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if user, ok := resolveUser(GetDB(c), tokenStr); ok {
				c.Set("current_user", user)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated caller, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	val, exists := c.Get("current_user")
	if !exists {
		return nil
	}
	return val.(*models.User)
}
