package table

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nuptial-ops/wedding-manager/internal/errdef"
	"github.com/nuptial-ops/wedding-manager/internal/handler"
	"github.com/nuptial-ops/wedding-manager/pkg/document"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
)

type documents interface {
	Render(w io.Writer, title string, export roster.Export) error
	Archive(ctx context.Context, weddingID uint, title string, export roster.Export) (string, error)
}

// NewHandler returns a handler for the view of service. Exports are titled title.
func NewHandler(service *Service, documents documents, title string) Handler {
	return Handler{
		service:   service,
		documents: documents,
		title:     title,
	}
}

type Handler struct {
	service   *Service
	documents documents
	title     string
}

// Find the projection of a view
func (h Handler) Find(c *gin.Context) {
	// swagger:route GET /weddings/{weddingId}/guests/roster findGuestRoster
	//
	// Find guest roster
	//
	// The column schema and every row of the guest roster, one column group per event...
	//
	// responses:
	//   200: Projection
	//   400: Error
	//   502: Error
	weddingID, err := handler.GetWeddingFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	projection, err := h.service.Find(c.Request.Context(), weddingID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, projection)
}

// Query filters and sorts the rows of a view
func (h Handler) Query(c *gin.Context) {
	// swagger:route POST /weddings/{weddingId}/guests/roster/query queryGuestRoster
	//
	// Query guest roster
	//
	// Filter and sort the guest roster...
	//
	// responses:
	//   200: Projection
	//   400: Error
	//   415: Error
	//   502: Error
	weddingID, err := handler.GetWeddingFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var query roster.Query
	if err := handler.DataBinder(c, &query); err != nil {
		_ = c.Error(err)
		return
	}

	projection, err := h.service.Query(c.Request.Context(), weddingID, query)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, projection)
}

type EditCellRequest struct {
	Column string `json:"column" binding:"required"`
	Value  any    `json:"value"`
}

// EditCell sets a single cell
func (h Handler) EditCell(c *gin.Context) {
	// swagger:route PATCH /weddings/{weddingId}/guests/{recordId}/cells editGuestCell
	//
	// Edit guest cell
	//
	// Set one cell of the roster. The change is shown right away and undone if saving it fails...
	//
	// responses:
	//   204:
	//   400: Error
	//   404: Error
	//   415: Error
	//   503: Error
	weddingID, err := handler.GetWeddingFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recordID, ok := handler.GetPathParameter(c, "recordId")
	if !ok {
		return
	}

	var request EditCellRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	edit := roster.Edit{RecordID: recordID, Column: request.Column, Value: request.Value}
	if err := h.service.EditCell(c.Request.Context(), weddingID, edit); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type ArchiveResponse struct {
	Key string `json:"key"`
}

// Export the queried rows as a document
func (h Handler) Export(c *gin.Context) {
	// swagger:route POST /weddings/{weddingId}/guests/export exportGuestRoster
	//
	// Export guest roster
	//
	// Download the filtered and sorted roster as a Word document or as CSV. With archive=true the Word document is stored instead and its key returned...
	//
	// responses:
	//   200: Document
	//   201: ArchiveResponse
	//   400: Error
	//   415: Error
	//   502: Error
	weddingID, err := handler.GetWeddingFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	format := c.DefaultQuery("format", "docx")
	if format != "docx" && format != "csv" {
		_ = c.Error(errdef.NewBadRequest("unsupported export format %q", format))
		return
	}
	archive := c.Query("archive") == "true"
	if archive && format != "docx" {
		_ = c.Error(errdef.NewBadRequest("only docx exports can be archived"))
		return
	}

	var query roster.Query
	if c.Request.ContentLength != 0 {
		if err := handler.DataBinder(c, &query); err != nil {
			_ = c.Error(err)
			return
		}
	}

	ctx := c.Request.Context()
	export, err := h.service.Export(ctx, weddingID, query)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if archive {
		key, err := h.documents.Archive(ctx, weddingID, h.title, export)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, ArchiveResponse{Key: key})
		return
	}

	var buf bytes.Buffer
	contentType := document.ContentType
	if format == "csv" {
		contentType = "text/csv"
		err = export.WriteCSV(&buf)
	} else {
		err = h.documents.Render(&buf, h.title, export)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.Filename(h.title, format)))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
