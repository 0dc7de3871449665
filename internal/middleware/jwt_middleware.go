package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/config"
)

func JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Authorization header required",
			})
			c.Abort()
			return
		}

		userID, err := parseUserID(tokenString)
		if err != nil {
			message := "Token validation failed"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
				message = "Invalid token signature"
			} else if errors.Is(err, jwt.ErrTokenMalformed) {
				message = "Token is malformed"
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": message,
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// OptionalJWTMiddleware sets user_id when a valid token is present but never
// rejects the request.
func OptionalJWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		if userID, err := parseUserID(tokenString); err == nil {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func parseUserID(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		if config.GlobalConfig.JWTSecret == "" {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(config.GlobalConfig.JWTSecret), nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}
	return uint(userID), nil
}
