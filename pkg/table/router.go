package table

import (
	"github.com/gin-gonic/gin"
	"github.com/nuptial-ops/wedding-manager/internal/middleware"
)

// Routes serves the view under /weddings/:weddingId/<collection>, its rows under <viewPath>.
func Routes(r gin.IRouter, collection, viewPath string, handler Handler) {
	router := r.Group("/weddings/:weddingId/"+collection, middleware.WeddingScope())
	router.GET("/"+viewPath, handler.Find)
	router.POST("/"+viewPath+"/query", handler.Query)
	router.PATCH("/:recordId/cells", handler.EditCell)
	router.POST("/export", handler.Export)
}
