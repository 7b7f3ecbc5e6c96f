package guest

import (
	"context"
	"log/slog"

	"github.com/nuptial-ops/wedding-manager/pkg/model"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
	"golang.org/x/sync/errgroup"
)

type guestRepository interface {
	findGuests(ctx context.Context, weddingID uint) ([]model.Guest, error)
	findEvents(ctx context.Context, weddingID uint) ([]model.Event, error)
	findAttendance(ctx context.Context, weddingID uint) ([]model.GuestEventAttendance, error)
}

type lookupService interface {
	Lookups(ctx context.Context, weddingID uint) (roster.Lookups, error)
}

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(logger *slog.Logger, definition roster.Definition, repository guestRepository, lookups lookupService) *service {
	return &service{
		logger:     logger,
		definition: definition,
		repository: repository,
		lookups:    lookups,
	}
}

type service struct {
	logger     *slog.Logger
	definition roster.Definition
	repository guestRepository
	lookups    lookupService
}

// Load reads guests, events, attendance and lookups concurrently and projects them into the roster.
func (s *service) Load(ctx context.Context, weddingID uint) (roster.Schema, []roster.Row, error) {
	var (
		guests     []model.Guest
		events     []model.Event
		attendance []model.GuestEventAttendance
		lookups    roster.Lookups
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		guests, err = s.repository.findGuests(gctx, weddingID)
		return err
	})
	g.Go(func() (err error) {
		events, err = s.repository.findEvents(gctx, weddingID)
		return err
	})
	g.Go(func() (err error) {
		attendance, err = s.repository.findAttendance(gctx, weddingID)
		return err
	})
	g.Go(func() (err error) {
		lookups, err = s.lookups.Lookups(gctx, weddingID)
		return err
	})
	if err := g.Wait(); err != nil {
		return roster.Schema{}, nil, err
	}

	schema := roster.Project(s.definition, toEvents(events))
	rows := roster.Transform(schema, toRecords(guests), toFacts(attendance), lookups)
	s.logger.DebugContext(ctx, "Loaded guest roster", "guests", len(rows), "events", len(schema.Events))
	return schema, rows, nil
}

func toEvents(events []model.Event) []roster.Event {
	result := make([]roster.Event, len(events))
	for i, event := range events {
		result[i] = roster.Event{ID: event.ID, Name: event.Name, SortOrder: event.SortOrder}
	}
	return result
}

func toRecords(guests []model.Guest) []roster.Record {
	records := make([]roster.Record, len(guests))
	for i, guest := range guests {
		records[i] = roster.Record{
			ID: guest.ID,
			Fields: map[string]any{
				"name":                 guest.Name,
				"guest_type":           guest.GuestType,
				"side":                 guest.Side,
				"group_code":           guest.GroupCode,
				"rsvp_status":          guest.RSVPStatus,
				"plus_one":             guest.PlusOne,
				"plus_one_name":        guest.PlusOneName,
				"email":                guest.Email,
				"phone":                guest.Phone,
				"table_number":         guest.TableNumber,
				"dietary_restrictions": guest.DietaryRestrictions,
				"notes":                guest.Notes,
			},
		}
	}
	return records
}

func toFacts(attendance []model.GuestEventAttendance) []roster.Fact {
	facts := make([]roster.Fact, len(attendance))
	for i, a := range attendance {
		facts[i] = roster.Fact{
			RecordID: a.GuestID,
			EventID:  a.EventID,
			Attendance: roster.Attendance{
				Attending:        a.Attending,
				ShuttleToEvent:   a.ShuttleToEvent,
				ShuttleFromEvent: a.ShuttleFromEvent,
			},
		}
	}
	return facts
}
