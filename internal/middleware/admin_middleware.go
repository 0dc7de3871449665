package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/repository"
)

// AdminMiddleware requires a valid JWT (runs after JWTMiddleware) and an
// admin role.
func AdminMiddleware(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Authentication required",
			})
			c.Abort()
			return
		}

		user, err := userRepo.FindUserByID(userID)
		if err != nil || user.Role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "Admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
