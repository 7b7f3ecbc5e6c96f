package matrix

import (
	"github.com/gin-gonic/gin"
	"github.com/nuptial-ops/wedding-manager/internal/middleware"
)

func Routes(r gin.IRouter, handler Handler) {
	r.POST("/weddings/:weddingId/attendance-matrix", middleware.WeddingScope(), handler.Open)

	sessionRouter := r.Group("/attendance-matrix/:sessionId")
	sessionRouter.GET("", handler.Find)
	sessionRouter.PUT("/pending", handler.SetPending)
	sessionRouter.POST("/commit", handler.Commit)
	sessionRouter.DELETE("", handler.Discard)
}
