package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nuptial-ops/wedding-manager/internal/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// GetEngine returns a gin engine with the middleware every route needs. Domain routes are added by
// the callers under the returned group.
func GetEngine(logger *slog.Logger, serviceName string, basePath string, allowedOrigins []string) (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AddAllowHeaders(middleware.CorrelationIDHeader)
	corsConfig.AddExposeHeaders(middleware.CorrelationIDHeader, "Content-Disposition")
	r.Use(cors.New(corsConfig))

	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.ErrorHandler())

	router := r.Group(basePath)
	router.GET("/health", health)

	return r, router
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}
