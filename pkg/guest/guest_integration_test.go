package guest_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nuptial-ops/wedding-manager/pkg/guest"
	"github.com/nuptial-ops/wedding-manager/pkg/inttest"
	"github.com/nuptial-ops/wedding-manager/pkg/matrix"
	"github.com/nuptial-ops/wedding-manager/pkg/model"
	"github.com/nuptial-ops/wedding-manager/pkg/notify"
	"github.com/nuptial-ops/wedding-manager/pkg/recordstore"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
	"github.com/nuptial-ops/wedding-manager/pkg/table"
	"github.com/nuptial-ops/wedding-manager/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noLookups struct{}

func (noLookups) Lookups(context.Context, uint) (roster.Lookups, error) {
	return roster.Lookups{}, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, notify.Event) error { return nil }

func TestGuestRoster(t *testing.T) {
	db := inttest.SetupSQLite(t)
	logger := slog.New(slog.DiscardHandler)

	require.NoError(t, db.Create(&model.Wedding{ID: 1, Name: "Ann & Bob"}).Error)
	require.NoError(t, db.Create(&model.Event{ID: 1, WeddingID: 1, Name: "Ceremony", SortOrder: 1}).Error)
	require.NoError(t, db.Create(&model.Event{ID: 2, WeddingID: 1, Name: "Reception", SortOrder: 2}).Error)
	require.NoError(t, db.Create(&model.Guest{ID: 1, WeddingID: 1, Name: "Ann", GuestType: model.GuestTypeAdult, RSVPStatus: model.RSVPAccepted}).Error)
	require.NoError(t, db.Create(&model.Guest{ID: 2, WeddingID: 1, Name: "Bob", GuestType: model.GuestTypeAdult, RSVPStatus: model.RSVPPending}).Error)
	bus := "bus"
	require.NoError(t, db.Create(&model.GuestEventAttendance{GuestID: 1, EventID: 2, Attending: true, ShuttleToEvent: &bus, ShuttleFromEvent: &bus}).Error)

	definitions, err := view.Load()
	require.NoError(t, err)
	definition, err := definitions.Get(view.Guests)
	require.NoError(t, err)

	store := recordstore.New(db, "guests", "guest_event_attendances")
	cache := roster.NewCache(0)
	hub := notify.NewHub(logger, cache, notify.NewBroker(), nopPublisher{})
	guestService := guest.NewService(logger, definition, guest.NewRepository(db), noLookups{})
	mutator := roster.NewMutator(logger, cache, store, hub)
	tableService := table.NewService(view.Guests, guestService, cache, mutator)
	registry := matrix.NewRegistry(logger, view.Guests, guestService, store, hub)
	client := inttest.SetupHTTPServer(t, func(router *gin.RouterGroup) {
		table.Routes(router, "guests", "roster", table.NewHandler(tableService, nil, "Guests"))
		matrix.Routes(router, matrix.NewHandler(registry))
	})

	fetchRoster := func(t *testing.T) roster.Projection {
		var projection roster.Projection
		client.GetJSON(t, "/weddings/1/guests/roster", &projection)
		return projection
	}

	t.Run("Roster", func(t *testing.T) {
		projection := fetchRoster(t)

		require.Len(t, projection.Rows, 2)
		assert.Len(t, projection.Schema.Events, 2)
		ann := projection.Rows[0]
		assert.Equal(t, "Ann", ann.Fields["name"])
		assert.False(t, ann.EventAttendance[1].Attending)
		assert.True(t, ann.EventAttendance[2].Attending)
	})

	t.Run("EditBaseCell", func(t *testing.T) {
		client.DoJSON(t, http.MethodPatch, "/weddings/1/guests/2/cells", strings.NewReader(`{"column":"table_number","value":4}`), http.StatusNoContent, nil)

		var bob model.Guest
		require.NoError(t, db.First(&bob, 2).Error)
		require.NotNil(t, bob.TableNumber)
		assert.Equal(t, 4, *bob.TableNumber)
	})

	t.Run("UncheckingAttendanceClearsShuttles", func(t *testing.T) {
		client.DoJSON(t, http.MethodPatch, "/weddings/1/guests/1/cells", strings.NewReader(`{"column":"event_2_attending","value":false}`), http.StatusNoContent, nil)

		var fact model.GuestEventAttendance
		require.NoError(t, db.Where("guest_id = ? AND event_id = ?", 1, 2).First(&fact).Error)
		assert.False(t, fact.Attending)
		assert.Nil(t, fact.ShuttleToEvent)
		assert.Nil(t, fact.ShuttleFromEvent)
		assert.False(t, fetchRoster(t).Rows[0].EventAttendance[2].Attending)
	})

	t.Run("QueryAttendingEvent", func(t *testing.T) {
		client.DoJSON(t, http.MethodPatch, "/weddings/1/guests/2/cells", strings.NewReader(`{"column":"event_1_attending","value":true}`), http.StatusNoContent, nil)

		var projection roster.Projection
		client.DoJSON(t, http.MethodPost, "/weddings/1/guests/roster/query", strings.NewReader(`{"shared":{"attendingEventId":1}}`), http.StatusOK, &projection)
		require.Len(t, projection.Rows, 1)
		assert.Equal(t, "Bob", projection.Rows[0].Fields["name"])
	})

	t.Run("AttendanceMatrix", func(t *testing.T) {
		var session matrix.View
		client.PostJSON(t, "/weddings/1/attendance-matrix", nil, &session)
		path := "/attendance-matrix/" + session.ID

		for _, guestID := range []uint{1, 2} {
			body := fmt.Sprintf(`{"guestId":%d,"eventId":2,"patch":{"attending":true,"shuttle_to_event":"car"}}`, guestID)
			client.DoJSON(t, http.MethodPut, path+"/pending", strings.NewReader(body), http.StatusOK, nil)
		}
		body := `{"guestId":2,"eventId":1,"patch":{"attending":false}}`
		client.DoJSON(t, http.MethodPut, path+"/pending", strings.NewReader(body), http.StatusOK, nil)

		var result matrix.CommitResult
		client.DoJSON(t, http.MethodPost, path+"/commit", nil, http.StatusOK, &result)
		assert.Equal(t, 3, result.Saved)

		var facts []model.GuestEventAttendance
		require.NoError(t, db.Order("guest_id").Order("event_id").Find(&facts).Error)
		require.Len(t, facts, 3)
		assert.Equal(t, uint(1), facts[0].GuestID)
		assert.True(t, facts[0].Attending)
		assert.Equal(t, "car", *facts[0].ShuttleToEvent)
		assert.False(t, facts[1].Attending, "guest 2 no longer attends the ceremony")
		assert.True(t, facts[2].Attending)

		projection := fetchRoster(t)
		assert.True(t, projection.Rows[1].EventAttendance[2].Attending, "the commit invalidates the cached roster")
		assert.False(t, projection.Rows[1].EventAttendance[1].Attending)
	})
}
