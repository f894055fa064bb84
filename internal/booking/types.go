package booking

import (
	"context"
	"strings"
	"time"
)

// SpotType separates the executive spots near the entrance from the regular
// pool. Executive spots can only be reserved on short notice.
type SpotType string

const (
	SpotRegular   SpotType = "regular"
	SpotExecutive SpotType = "executive"
)

// Spot is a reservable parking space on the floor plan.
type Spot struct {
	ID       string
	Name     string
	Capacity int
	Type     SpotType
}

// ClassifySpot derives the spot type from its floor-plan label.
func ClassifySpot(name string) SpotType {
	if strings.Contains(strings.ToLower(name), "exc") {
		return SpotExecutive
	}
	return SpotRegular
}

// TargetDate is one date the workflow wants covered, together with which
// pool of spots it should draw from.
type TargetDate struct {
	Date time.Time
	Kind SpotType
}

// ExistingBooking is a reservation already held by the user.
type ExistingBooking struct {
	Date     time.Time
	SpotID   string
	SpotName string
}

// Outcome is the terminal state of one target date after a run.
type Outcome string

const (
	OutcomeBooked          Outcome = "booked"
	OutcomeAlreadyBooked   Outcome = "skipped_already_booked"
	OutcomeSkippedWeekend  Outcome = "skipped_weekend"
	OutcomeSkippedVacation Outcome = "skipped_vacation"
	OutcomeSkippedNoSpots  Outcome = "skipped_no_spots"
	OutcomeFailed          Outcome = "failed"
)

// DateOutcome records what happened for a single target date.
type DateOutcome struct {
	Date    time.Time
	Outcome Outcome
	Spot    *Spot
	Err     error
}

// Skipped reports whether the date was resolved without touching the
// backend.
func (d DateOutcome) Skipped() bool {
	switch d.Outcome {
	case OutcomeSkippedWeekend, OutcomeSkippedVacation:
		return true
	}
	return false
}

// Directory is the backend view the executor works against. The production
// implementation talks to the Elia GraphQL API.
type Directory interface {
	// ExistingBookings returns the user's upcoming reservations.
	ExistingBookings(ctx context.Context) ([]ExistingBooking, error)

	// AvailableSpots returns the spots still free on the given date.
	AvailableSpots(ctx context.Context, date time.Time) ([]Spot, error)

	// Reserve books the spot for the date.
	Reserve(ctx context.Context, date time.Time, spotID string) error
}
