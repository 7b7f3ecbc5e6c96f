package docs

import (
	"github.com/nuptial-ops/wedding-manager/pkg/lookup"
	"github.com/nuptial-ops/wedding-manager/pkg/matrix"
	"github.com/nuptial-ops/wedding-manager/pkg/notify"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
	"github.com/nuptial-ops/wedding-manager/pkg/table"
)

// swagger:parameters findGuestRoster queryGuestRoster editGuestCell exportGuestRoster openAttendanceMatrix findLookupOptions saveLookupOption deleteLookupOption streamInvalidations invalidateViews
type WeddingIDParam struct {
	// in: path
	// required: true
	WeddingID uint `json:"weddingId"`
}

// swagger:parameters findAttendanceMatrix setAttendancePending commitAttendanceMatrix discardAttendanceMatrix
type SessionIDParam struct {
	// in: path
	// required: true
	SessionID string `json:"sessionId"`
}

// swagger:parameters editGuestCell
type EditCellParams struct {
	// in: path
	// required: true
	RecordID uint `json:"recordId"`

	// in: body
	// required: true
	Body table.EditCellRequest
}

// swagger:parameters queryGuestRoster exportGuestRoster
type QueryParams struct {
	// in: body
	Body roster.Query
}

// swagger:parameters exportGuestRoster
type ExportParams struct {
	// docx or csv
	// in: query
	Format string `json:"format"`

	// Store the Word document instead of returning it
	// in: query
	Archive bool `json:"archive"`
}

// swagger:parameters setAttendancePending
type SetPendingParams struct {
	// in: body
	// required: true
	Body matrix.SetPendingRequest
}

// swagger:parameters saveLookupOption
type SaveOptionParams struct {
	// in: body
	// required: true
	Body lookup.SaveOptionRequest
}

// swagger:parameters deleteLookupOption
type LookupOptionParams struct {
	// in: path
	// required: true
	Kind string `json:"kind"`

	// in: path
	// required: true
	Code string `json:"code"`
}

// swagger:parameters invalidateViews
type InvalidateParams struct {
	// in: body
	Body notify.InvalidateRequest
}

// swagger:response
type Error struct {
	// The error message
	//in: body
	Message string
}

// swagger:response
type Projection struct {
	//in: body
	Body roster.Projection
}

// swagger:response
type View struct {
	//in: body
	Body matrix.View
}

// swagger:response
type CommitResult struct {
	//in: body
	Body matrix.CommitResult
}

// swagger:response
type ArchiveResponse struct {
	//in: body
	Body table.ArchiveResponse
}

// A Word document or CSV file
// swagger:response
type Document struct {
	//in: body
	Body []byte
}

// Server sent "invalidate" events carrying the wedding and optionally the view to reload
// swagger:response
type Stream struct {
	//in: body
	Body notify.Event
}
