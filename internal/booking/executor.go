package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/elia-parkbot/internal/retry"
)

// Executor resolves one target date at a time against the directory,
// skipping dates that need no booking and verifying the ones it books.
type Executor struct {
	dir   Directory
	coord *retry.Coordinator
	log   *slog.Logger

	// vacations holds dates (2006-01-02) that must never be booked.
	vacations map[string]bool

	now func() time.Time
}

func NewExecutor(dir Directory, coord *retry.Coordinator, vacations map[string]bool, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	if vacations == nil {
		vacations = map[string]bool{}
	}
	return &Executor{
		dir:       dir,
		coord:     coord,
		log:       log,
		vacations: vacations,
		now:       time.Now,
	}
}

const dayLayout = "2006-01-02"

func sameDay(a, b time.Time) bool {
	return a.Format(dayLayout) == b.Format(dayLayout)
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// categorizer is implemented by backend errors that know how they should be
// retried. Policy refusals come through here as scheduling failures, which
// are never retried.
type categorizer interface {
	RetryCategory() retry.Category
}

func categorize(err error, fallback retry.Category) retry.Category {
	var c categorizer
	if errors.As(err, &c) {
		return c.RetryCategory()
	}
	return fallback
}

// BookIfNeeded resolves one target date. Weekends and vacation days are
// skipped before any network traffic. An existing reservation on the date
// short-circuits the rest, which is what keeps double bookings out even when
// the run is repeated.
func (e *Executor) BookIfNeeded(ctx context.Context, target TargetDate) DateOutcome {
	date := target.Date
	log := e.log.With("date", date.Format(dayLayout), "kind", string(target.Kind))

	if isWeekend(date) {
		log.Debug("skipping weekend")
		return DateOutcome{Date: date, Outcome: OutcomeSkippedWeekend}
	}
	if e.vacations[date.Format(dayLayout)] {
		log.Info("skipping vacation day")
		return DateOutcome{Date: date, Outcome: OutcomeSkippedVacation}
	}

	existing, err := e.fetchExisting(ctx)
	if err != nil {
		return DateOutcome{Date: date, Outcome: OutcomeFailed, Err: err}
	}
	for _, b := range existing {
		if sameDay(b.Date, date) {
			log.Info("already booked", "spot", b.SpotName)
			spot := &Spot{ID: b.SpotID, Name: b.SpotName, Type: ClassifySpot(b.SpotName)}
			return DateOutcome{Date: date, Outcome: OutcomeAlreadyBooked, Spot: spot}
		}
	}

	spot, alternate, err := e.pickSpots(ctx, target)
	if err != nil {
		return DateOutcome{Date: date, Outcome: OutcomeFailed, Err: err}
	}
	if spot == nil {
		log.Warn("no spots available")
		return DateOutcome{Date: date, Outcome: OutcomeSkippedNoSpots}
	}

	log.Info("reserving spot", "spot", spot.Name)
	classify := func(err error) retry.Category {
		return categorize(err, retry.CategoryBooking)
	}
	// After the first rejection the other spot type gets one shot before
	// more retries are spent on the preferred spot.
	booked := spot
	var fallback func(ctx context.Context) error
	if alternate != nil {
		fallback = func(ctx context.Context) error {
			log.Info("trying other spot type", "spot", alternate.Name)
			if aerr := e.dir.Reserve(ctx, date, alternate.ID); aerr != nil {
				return aerr
			}
			booked = alternate
			return nil
		}
	}
	err = e.coord.DoWithFallback(ctx, "reserve", classify, func(ctx context.Context) error {
		return e.dir.Reserve(ctx, date, spot.ID)
	}, fallback)
	if err != nil {
		return DateOutcome{Date: date, Outcome: OutcomeFailed, Err: err}
	}
	spot = booked

	if verr := e.verify(ctx, date); verr != nil {
		log.Error("booking not visible after reserve", "error", verr)
		return DateOutcome{Date: date, Outcome: OutcomeFailed, Err: verr}
	}
	return DateOutcome{Date: date, Outcome: OutcomeBooked, Spot: spot}
}

// classifyFetch keeps typed backend errors in their own category so an
// expired token surfaces as an auth failure, not a network one.
func classifyFetch(err error) retry.Category {
	return categorize(err, retry.CategoryNetwork)
}

func (e *Executor) fetchExisting(ctx context.Context) ([]ExistingBooking, error) {
	var existing []ExistingBooking
	err := e.coord.DoClassified(ctx, "existing-bookings", classifyFetch, func(ctx context.Context) error {
		var ferr error
		existing, ferr = e.dir.ExistingBookings(ctx)
		return ferr
	})
	return existing, err
}

func otherType(t SpotType) SpotType {
	if t == SpotExecutive {
		return SpotRegular
	}
	return SpotExecutive
}

// pickSpots returns the best free spot of the preferred type plus the best
// spot of the other type as a booking-time fallback. An executive target
// with an empty executive pool widens to the regular pool outright.
func (e *Executor) pickSpots(ctx context.Context, target TargetDate) (primary, alternate *Spot, err error) {
	var spots []Spot
	err = e.coord.DoClassified(ctx, "available-spots", classifyFetch, func(ctx context.Context) error {
		var ferr error
		spots, ferr = e.dir.AvailableSpots(ctx, target.Date)
		return ferr
	})
	if err != nil {
		return nil, nil, err
	}

	pool := RankSpots(FilterByType(spots, target.Kind))
	altPool := RankSpots(FilterByType(spots, otherType(target.Kind)))
	if len(pool) == 0 && target.Kind == SpotExecutive {
		pool, altPool = altPool, nil
	}
	if len(pool) == 0 {
		return nil, nil, nil
	}
	primary = &pool[0]
	if len(altPool) > 0 {
		alternate = &altPool[0]
	}
	return primary, alternate, nil
}

// verify re-reads the floor plan and requires the fresh booking to show up.
func (e *Executor) verify(ctx context.Context, date time.Time) error {
	existing, err := e.fetchExisting(ctx)
	if err != nil {
		return err
	}
	for _, b := range existing {
		if sameDay(b.Date, date) {
			return nil
		}
	}
	return &VerificationError{Date: date}
}

// VerificationError means the reserve call returned success but the booking
// never appeared on the floor plan.
type VerificationError struct {
	Date time.Time
}

func (e *VerificationError) Error() string {
	return "booking for " + e.Date.Format(dayLayout) + " not found after reserve"
}
