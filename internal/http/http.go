package http

import (
	"net/http"
	"time"

	"github.com/datasteward/dqtracker/internal/appcontext"
	"github.com/datasteward/dqtracker/internal/http/middleware"
	"github.com/gin-gonic/gin"
)

const (
	rateLimitMax    = 100
	rateLimitWindow = 15 * time.Minute
)

type APIService struct {
	engine  *gin.Engine
	context *appcontext.Context
	limiter *middleware.RateLimiter
}

func NewHTTPService(ctx *appcontext.Context) *APIService {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.SecureMiddleware())
	engine.Use(middleware.CORSMiddleware())

	service := &APIService{
		engine:  engine,
		context: ctx,
		limiter: middleware.NewRateLimiter(rateLimitMax, rateLimitWindow),
	}
	service.setupRoutes()
	return service
}

func (h *APIService) Engine() *gin.Engine {
	return h.engine
}

func (h *APIService) setupRoutes() {
	h.engine.GET("/", Root(h.context))
	h.engine.GET("/health", Health(h.context))

	api := h.engine.Group("/api")
	api.Use(middleware.RateLimitMiddleware(h.limiter))

	h.setupAuthRoutes(api)
	h.setupLookupRoutes(api)
	h.setupDashboardRoutes(api)
	h.setupIssueRoutes(api)
	h.setupExportRoutes(api)

	h.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})
}

func (h *APIService) setupAuthRoutes(group *gin.RouterGroup) {
	auth := group.Group("/auth")

	auth.POST("/signup", Signup(h.context))
	auth.POST("/signin", Signin(h.context))
	auth.POST("/signout", middleware.AuthMiddleware(h.context), Signout(h.context))
	auth.GET("/me", middleware.AuthMiddleware(h.context), Me(h.context))
}

func (h *APIService) setupLookupRoutes(group *gin.RouterGroup) {
	group.GET("/categories", middleware.AuthMiddleware(h.context), GetCategories(h.context))
	group.GET("/severity-levels", middleware.AuthMiddleware(h.context), GetSeverityLevels(h.context))
}

func (h *APIService) setupDashboardRoutes(group *gin.RouterGroup) {
	dashboard := group.Group("/dashboard")
	dashboard.Use(middleware.AuthMiddleware(h.context))

	dashboard.GET("/stats", GetDashboardStats(h.context))
}

func (h *APIService) setupIssueRoutes(group *gin.RouterGroup) {
	issues := group.Group("/issues")
	issues.Use(middleware.AuthMiddleware(h.context))

	issues.GET("", ListIssues(h.context))
	issues.GET("/:id", GetIssue(h.context))
	issues.POST("", CreateIssue(h.context))
	issues.PUT("/:id", UpdateIssue(h.context))
	issues.DELETE("/:id", DeleteIssue(h.context))
}

func (h *APIService) setupExportRoutes(group *gin.RouterGroup) {
	export := group.Group("/export")
	export.Use(middleware.AuthMiddleware(h.context))

	export.GET("/csv", ExportCSV(h.context))
}
