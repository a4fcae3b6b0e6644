package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/datasteward/dqtracker/internal/appcontext"
	"github.com/datasteward/dqtracker/internal/entity"
	"github.com/datasteward/dqtracker/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func Signup(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type SignupRequest struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			FullName string `json:"full_name"`
		}

		var request SignupRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}

		if request.Email == "" || request.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password are required"})
			return
		}

		if len(request.Password) < 8 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Password must be at least 8 characters"})
			return
		}

		fullName := request.FullName
		if fullName == "" {
			fullName = strings.Split(request.Email, "@")[0]
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			ctx.Logger.Error("Failed to hash password", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Signup failed"})
			return
		}

		user := entity.User{
			Email:        strings.ToLower(strings.TrimSpace(request.Email)),
			PasswordHash: string(hash),
			FullName:     fullName,
		}
		if err := ctx.DB.Create(&user).Error; err != nil {
			ctx.Logger.Error("Failed to create user", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Account with this email already exists"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Account created successfully",
			"user":    gin.H{"id": user.ID, "email": user.Email},
		})
	}
}

func Signin(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type SigninRequest struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}

		var request SigninRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}

		if request.Email == "" || request.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password are required"})
			return
		}

		var user entity.User
		if err := ctx.DB.First(&user, "email = ?", strings.ToLower(strings.TrimSpace(request.Email))).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}

		accessToken, err := utils.GenerateJWT(ctx.JWTSecret, user.ID.String(), "access", utils.AccessTokenTTL)
		if err != nil {
			ctx.Logger.Error("Failed to generate access token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
			return
		}

		refreshToken, err := utils.GenerateJWT(ctx.JWTSecret, user.ID.String(), "refresh", utils.RefreshTokenTTL)
		if err != nil {
			ctx.Logger.Error("Failed to generate refresh token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Logged in successfully",
			"user": gin.H{
				"id":        user.ID,
				"email":     user.Email,
				"full_name": user.FullName,
			},
			"session": gin.H{
				"access_token":  accessToken,
				"refresh_token": refreshToken,
				"expires_at":    time.Now().Add(utils.AccessTokenTTL).Unix(),
			},
		})
	}
}

// Signout is stateless: tokens are not tracked server-side, so there is
// nothing to revoke. The endpoint exists so clients have a uniform
// lifecycle to call.
func Signout(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
	}
}

func Me(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user")
		user, ok := value.(entity.User)
		if !exists || !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired authentication token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user": gin.H{
				"id":        user.ID,
				"email":     user.Email,
				"full_name": user.FullName,
			},
		})
	}
}
