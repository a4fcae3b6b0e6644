package http

import (
	"net/http"
	"os"
	"time"

	"github.com/datasteward/dqtracker/internal/appcontext"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Root(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "Data Quality Tracker API",
			"version":     "1.0.0",
			"environment": environment,
		})
	}
}

// Health reports database connectivity. 503 when the store is
// unreachable so load balancers can pull the instance.
func Health(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		connected := true

		sqlDB, err := ctx.DB.DB()
		if err != nil {
			connected = false
		} else if err := sqlDB.Ping(); err != nil {
			ctx.Logger.Warn("Database ping failed", zap.Error(err))
			connected = false
		}

		status := http.StatusOK
		database := "connected"
		if !connected {
			status = http.StatusServiceUnavailable
			database = "disconnected"
		}

		c.JSON(status, gin.H{
			"success":   connected,
			"database":  database,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
