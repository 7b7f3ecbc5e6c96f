package matrix

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nuptial-ops/wedding-manager/internal/handler"
	"github.com/nuptial-ops/wedding-manager/pkg/model"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
)

func NewHandler(registry *Registry) Handler {
	return Handler{registry: registry}
}

type Handler struct {
	registry *Registry
}

// View is what the attendance grid renders: the fetched rows with every unsaved change laid over
// them and the totals of those rows.
type View struct {
	ID      string        `json:"id"`
	State   State         `json:"state"`
	Schema  roster.Schema `json:"schema"`
	Rows    []roster.Row  `json:"rows"`
	Totals  []EventTotal  `json:"totals"`
	Pending Pending       `json:"pending"`
}

// Open an attendance matrix
func (h Handler) Open(c *gin.Context) {
	// swagger:route POST /weddings/{weddingId}/attendance-matrix openAttendanceMatrix
	//
	// Open attendance matrix
	//
	// Open a bulk attendance editing session for a wedding...
	//
	// responses:
	//   201: View
	//   400: Error
	//   502: Error
	weddingID, err := handler.GetWeddingFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	session, err := h.registry.Open(c.Request.Context(), weddingID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, session.Snapshot())
}

func (h Handler) Find(c *gin.Context) {
	// swagger:route GET /attendance-matrix/{sessionId} findAttendanceMatrix
	//
	// Find attendance matrix
	//
	// responses:
	//   200: View
	//   400: Error
	//   404: Error
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, session.Snapshot())
}

type SetPendingRequest struct {
	GuestID  uint           `json:"guestId" binding:"required"`
	EventID  uint           `json:"eventId" binding:"required"`
	Patch    map[string]any `json:"patch" binding:"required"`
}

// SetPending stages a change of one (guest, event) pair
func (h Handler) SetPending(c *gin.Context) {
	// swagger:route PUT /attendance-matrix/{sessionId}/pending setAttendancePending
	//
	// Stage attendance change
	//
	// Stage a change of one guest's attendance of one event. Nothing is saved until commit...
	//
	// responses:
	//   200: View
	//   400: Error
	//   404: Error
	//   415: Error
	session, ok := h.session(c)
	if !ok {
		return
	}

	var request SetPendingRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	patch, err := ParsePatch(request.Patch)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := session.SetPending(request.GuestID, request.EventID, patch); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, session.Snapshot())
}

func (h Handler) Commit(c *gin.Context) {
	// swagger:route POST /attendance-matrix/{sessionId}/commit commitAttendanceMatrix
	//
	// Commit attendance matrix
	//
	// Save every staged change in one batch. A failed save keeps the changes staged...
	//
	// responses:
	//   200: CommitResult
	//   404: Error
	//   409: Error
	//   503: Error
	session, ok := h.session(c)
	if !ok {
		return
	}

	result, err := session.Commit(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h Handler) Discard(c *gin.Context) {
	// swagger:route DELETE /attendance-matrix/{sessionId} discardAttendanceMatrix
	//
	// Discard attendance matrix
	//
	// responses:
	//   202:
	//   404: Error
	//   409: Error
	id, ok := handler.GetUUIDPathParameter(c, "sessionId")
	if !ok {
		return
	}

	if err := h.registry.Discard(id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusAccepted)
}

func (h Handler) session(c *gin.Context) (*Session, bool) {
	id, ok := handler.GetUUIDPathParameter(c, "sessionId")
	if !ok {
		return nil, false
	}

	session, err := h.registry.Get(id)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}

	ctx := model.NewContextWithWedding(c.Request.Context(), session.WeddingID())
	c.Request = c.Request.WithContext(ctx)
	return session, true
}
