package http

import (
	"net/http"

	"github.com/datasteward/dqtracker/internal/appcontext"
	"github.com/datasteward/dqtracker/internal/entity"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func GetCategories(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []entity.Category
		if err := ctx.DB.Order("name").Find(&categories).Error; err != nil {
			ctx.Logger.Error("Failed to fetch categories", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch categories"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
	}
}

func GetSeverityLevels(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var severities []entity.Severity
		if err := ctx.DB.Order("level DESC").Find(&severities).Error; err != nil {
			ctx.Logger.Error("Failed to fetch severity levels", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch severity levels"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": severities})
	}
}
