package notify

import (
	"github.com/gin-gonic/gin"
	"github.com/nuptial-ops/wedding-manager/internal/middleware"
)

func Routes(r gin.IRouter, handler Handler) {
	weddingRouter := r.Group("/weddings/:weddingId", middleware.WeddingScope())
	weddingRouter.GET("/stream", handler.Stream)
	weddingRouter.POST("/invalidations", handler.Invalidate)
}
