package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/nuptial-ops/wedding-manager/internal/errdef"
)

// DataBinder binds a JSON request body into req and validates it.
func DataBinder(c *gin.Context, req any) error {
	if c.ContentType() != gin.MIMEJSON {
		return errdef.NewUnsupportedMediaType("%s only accepts content of type %s", c.FullPath(), gin.MIMEJSON)
	}

	if err := c.ShouldBindJSON(req); err != nil {
		return errdef.NewBadRequest("error binding data: %v", err)
	}

	return nil
}
