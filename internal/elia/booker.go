package elia

import (
	"context"
	"fmt"
	"time"

	"github.com/example/elia-parkbot/internal/booking"
)

// Booker adapts the GraphQL client to the directory the booking executor
// works against, scoped to one floor and one user.
type Booker struct {
	client  *Client
	floorID string
	userID  string

	windowStart string
	windowHours int

	// lookahead bounds how far out ExistingBookings scans.
	lookahead time.Duration

	now func() time.Time
}

func NewBooker(client *Client, floorID, userID, windowStart string, windowHours int) *Booker {
	return &Booker{
		client:      client,
		floorID:     floorID,
		userID:      userID,
		windowStart: windowStart,
		windowHours: windowHours,
		lookahead:   30 * 24 * time.Hour,
		now:         time.Now,
	}
}

func (b *Booker) ExistingBookings(ctx context.Context) ([]booking.ExistingBooking, error) {
	from := b.now()
	all, err := b.client.FloorPlanBookings(ctx, b.floorID, from, from.Add(b.lookahead))
	if err != nil {
		return nil, fmt.Errorf("list floor bookings: %w", err)
	}
	mine := make([]booking.ExistingBooking, 0, len(all))
	for _, sb := range all {
		if sb.UserID != b.userID {
			continue
		}
		mine = append(mine, booking.ExistingBooking{
			Date:     sb.Date,
			SpotID:   sb.SpaceID,
			SpotName: sb.SpaceName,
		})
	}
	return mine, nil
}

func (b *Booker) AvailableSpots(ctx context.Context, date time.Time) ([]booking.Spot, error) {
	spaces, err := b.client.FloorSpaces(ctx, b.floorID)
	if err != nil {
		return nil, fmt.Errorf("list floor spaces: %w", err)
	}
	taken, err := b.client.FloorPlanBookings(ctx, b.floorID, date, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings on %s: %w", date.Format(dateLayout), err)
	}

	occupied := make(map[string]bool, len(taken))
	for _, sb := range taken {
		occupied[sb.SpaceID] = true
	}

	free := make([]booking.Spot, 0, len(spaces))
	for _, s := range spaces {
		if occupied[s.ID] {
			continue
		}
		free = append(free, booking.Spot{
			ID:       s.ID,
			Name:     s.Name,
			Capacity: s.Capacity,
			Type:     booking.ClassifySpot(s.Name),
		})
	}
	return free, nil
}

// ClassCount tallies one spot class on the floor.
type ClassCount struct {
	Total  int
	Booked int
}

func (c ClassCount) Available() int { return c.Total - c.Booked }

// FloorStatus summarizes availability on the floor for a single date.
type FloorStatus struct {
	Date      time.Time
	Executive ClassCount
	Regular   ClassCount
}

func (s FloorStatus) Total() int     { return s.Executive.Total + s.Regular.Total }
func (s FloorStatus) Available() int { return s.Executive.Available() + s.Regular.Available() }

// Status tallies availability per spot class for one date. It counts every
// booking on the floor, not just this user's.
func (b *Booker) Status(ctx context.Context, date time.Time) (FloorStatus, error) {
	spaces, err := b.client.FloorSpaces(ctx, b.floorID)
	if err != nil {
		return FloorStatus{}, fmt.Errorf("list floor spaces: %w", err)
	}
	taken, err := b.client.FloorPlanBookings(ctx, b.floorID, date, date)
	if err != nil {
		return FloorStatus{}, fmt.Errorf("list bookings on %s: %w", date.Format(dateLayout), err)
	}

	occupied := make(map[string]bool, len(taken))
	for _, sb := range taken {
		occupied[sb.SpaceID] = true
	}

	st := FloorStatus{Date: date}
	for _, s := range spaces {
		class := &st.Regular
		if booking.ClassifySpot(s.Name) == booking.SpotExecutive {
			class = &st.Executive
		}
		class.Total++
		if occupied[s.ID] {
			class.Booked++
		}
	}
	return st, nil
}

func (b *Booker) Reserve(ctx context.Context, date time.Time, spotID string) error {
	if err := b.client.MultiDateBook(ctx, b.floorID, spotID, []time.Time{date}, b.windowStart, b.windowHours); err != nil {
		return fmt.Errorf("book space %s on %s: %w", spotID, date.Format(dateLayout), err)
	}
	return nil
}
