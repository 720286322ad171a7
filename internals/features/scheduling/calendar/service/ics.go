package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/occurrences"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

const productID = "-//scheduling-system//class calendar//EN"

// ICS renders the range as an iCalendar feed. Cancelled occurrences stay in
// the feed with STATUS:CANCELLED so subscribed clients drop them.
func (s *Service) ICS(ctx context.Context, q Query) (string, error) {
	if err := s.validate(q); err != nil {
		return "", err
	}
	q.From, q.To = dbtime.DateOf(q.From), dbtime.DateOf(q.To)

	bookings, err := s.bookings(ctx, q)
	if err != nil {
		return "", err
	}
	instructors, rooms := s.ids(bookings)
	iNames, err := s.Directory.InstructorNames(ctx, instructors)
	if err != nil {
		return "", err
	}
	rNames, err := s.Directory.RoomNames(ctx, rooms)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	stamp := time.Now().UTC()
	for _, b := range bookings {
		ev := cal.AddEvent(eventUID(b))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(s.wallClock(b.Date, b.StartTime))
		ev.SetEndAt(s.wallClock(b.EndDate, b.EndTime))
		ev.SetSummary(b.ClassName)

		if b.RoomID != nil {
			if name := rNames[*b.RoomID]; name != "" {
				ev.SetLocation(name)
			}
		}
		desc := []string{"Instructor: " + iNames[b.InstructorID]}
		if b.Notes != nil {
			desc = append(desc, *b.Notes)
		}
		ev.SetDescription(strings.Join(desc, "\n"))

		if b.Status == instmodel.StatusCancelled {
			ev.SetStatus(ics.ObjectStatusCancelled)
		} else {
			ev.SetStatus(ics.ObjectStatusConfirmed)
		}
	}
	return cal.Serialize(), nil
}

// wallClock turns a civil date and HH:mm into the instant it denotes in the
// configured zone.
func (s *Service) wallClock(date time.Time, t dbtime.Tod) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, s.Location)
}

// eventUID is stable across exports: the instance id once materialized,
// otherwise the class id and slot.
func eventUID(b occurrences.Booking) string {
	if b.InstanceID != nil {
		return b.InstanceID.String() + "@scheduling"
	}
	return fmt.Sprintf("%s-%s-%s@scheduling", b.ClassID, dbtime.FormatDate(b.Date), strings.ReplaceAll(b.StartTime.String(), ":", ""))
}
