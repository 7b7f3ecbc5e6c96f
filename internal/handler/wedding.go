package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/nuptial-ops/wedding-manager/pkg/model"
)

// GetWeddingFromContext returns the wedding id the WeddingScope middleware stored in the request
// context.
func GetWeddingFromContext(c *gin.Context) (uint, error) {
	weddingID, ok := model.GetWeddingFromContext(c.Request.Context())
	if !ok {
		return 0, errors.New("wedding not found on context")
	}
	return weddingID, nil
}
