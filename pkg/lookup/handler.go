package lookup

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nuptial-ops/wedding-manager/internal/handler"
	"github.com/nuptial-ops/wedding-manager/pkg/model"
)

func NewHandler(service lookupService) Handler {
	return Handler{service: service}
}

type Handler struct {
	service lookupService
}

type lookupService interface {
	FindAll(ctx context.Context, weddingID uint) ([]model.LookupOption, error)
	Save(ctx context.Context, option *model.LookupOption) error
	Delete(ctx context.Context, weddingID uint, kind, code string) error
}

// FindAll lookup options of a wedding
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /weddings/{weddingId}/lookups findLookupOptions
	//
	// Find lookup options
	//
	// responses:
	//   200: []LookupOption
	//   400: Error
	//   502: Error
	weddingID, err := handler.GetWeddingFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	options, err := h.service.FindAll(c.Request.Context(), weddingID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, options)
}

type SaveOptionRequest struct {
	Kind      string `json:"kind" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Label     string `json:"label" binding:"required"`
	SortOrder int    `json:"sortOrder"`
}

// Save a lookup option
func (h Handler) Save(c *gin.Context) {
	// swagger:route PUT /weddings/{weddingId}/lookups saveLookupOption
	//
	// Save lookup option
	//
	// Create a lookup option or relabel an existing one. Every view of the wedding is reloaded...
	//
	// responses:
	//   200: LookupOption
	//   400: Error
	//   415: Error
	weddingID, err := handler.GetWeddingFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var request SaveOptionRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	option := &model.LookupOption{
		WeddingID: weddingID,
		Kind:      request.Kind,
		Code:      request.Code,
		Label:     request.Label,
		SortOrder: request.SortOrder,
	}
	if err := h.service.Save(c.Request.Context(), option); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, option)
}

func (h Handler) Delete(c *gin.Context) {
	// swagger:route DELETE /weddings/{weddingId}/lookups/{kind}/{code} deleteLookupOption
	//
	// Delete lookup option
	//
	// responses:
	//   202:
	//   400: Error
	//   404: Error
	weddingID, err := handler.GetWeddingFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), weddingID, c.Param("kind"), c.Param("code")); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusAccepted)
}
