package lookup

import (
	"github.com/gin-gonic/gin"
	"github.com/nuptial-ops/wedding-manager/internal/middleware"
)

func Routes(r gin.IRouter, handler Handler) {
	lookupRouter := r.Group("/weddings/:weddingId/lookups", middleware.WeddingScope())
	lookupRouter.GET("", handler.FindAll)
	lookupRouter.PUT("", handler.Save)
	lookupRouter.DELETE("/:kind/:code", handler.Delete)
}
