package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/elia-parkbot/internal/auth"
	"github.com/example/elia-parkbot/internal/booking"
)

// Mode selects which target dates a run covers.
type Mode string

const (
	// ModeAll books the executive date and the regular dates in one run.
	ModeAll Mode = "all"
	// ModeExecutive books only tomorrow's executive spot.
	ModeExecutive Mode = "executive"
	// ModeRegular books only the far-out regular dates.
	ModeRegular Mode = "regular"
)

// TargetDates enumerates the dates a run should cover. Executive spots can
// only be taken on short notice: the executive target is the first day still
// a full lead window away, which from a midnight or morning run is tomorrow.
// Regular spots open up two weeks ahead, so those targets sit at the far
// edge of the booking window where they are the first to be grabbed.
func TargetDates(now time.Time, execLead time.Duration, regularOffsets []int, mode Mode) []booking.TargetDate {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var out []booking.TargetDate
	if mode == ModeAll || mode == ModeExecutive {
		lead := now.Add(execLead)
		execDay := time.Date(lead.Year(), lead.Month(), lead.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
		out = append(out, booking.TargetDate{Date: execDay, Kind: booking.SpotExecutive})
	}
	if mode == ModeAll || mode == ModeRegular {
		for _, off := range regularOffsets {
			out = append(out, booking.TargetDate{Date: day.AddDate(0, 0, off), Kind: booking.SpotRegular})
		}
	}
	return out
}

// RunReport is the full account of one run, date by date.
type RunReport struct {
	ID         uuid.UUID
	Mode       Mode
	StartedAt  time.Time
	FinishedAt time.Time
	User       string
	Dates      []booking.DateOutcome

	// Fatal is set when the run died before any date could be attempted,
	// which in practice means authentication failed.
	Fatal error
}

// Succeeded reports whether the run finished without a fatal error and
// without any date ending in failure.
func (r RunReport) Succeeded() bool {
	if r.Fatal != nil {
		return false
	}
	for _, d := range r.Dates {
		if d.Outcome == booking.OutcomeFailed {
			return false
		}
	}
	return true
}

// Booked counts the dates that got a new reservation this run.
func (r RunReport) Booked() int {
	n := 0
	for _, d := range r.Dates {
		if d.Outcome == booking.OutcomeBooked {
			n++
		}
	}
	return n
}

// DateBooker resolves a single target date. Implemented by the booking
// executor; tests substitute fakes.
type DateBooker interface {
	BookIfNeeded(ctx context.Context, target booking.TargetDate) booking.DateOutcome
}

// SessionSource hands out a valid authenticated session.
type SessionSource interface {
	EnsureAuthenticated(ctx context.Context) (auth.Session, error)
}

// Workflow strings authentication and booking together into one run.
type Workflow struct {
	sessions SessionSource

	// newBooker builds the date booker for an authenticated session. The
	// session carries the user ID the booker filters bookings by.
	newBooker func(auth.Session) DateBooker

	execLead       time.Duration
	regularOffsets []int
	log            *slog.Logger
	now            func() time.Time
}

func New(sessions SessionSource, newBooker func(auth.Session) DateBooker, execLead time.Duration, regularOffsets []int, log *slog.Logger) *Workflow {
	if log == nil {
		log = slog.Default()
	}
	return &Workflow{
		sessions:       sessions,
		newBooker:      newBooker,
		execLead:       execLead,
		regularOffsets: regularOffsets,
		log:            log,
		now:            time.Now,
	}
}

// NewBooker builds the date booker for an already authenticated session,
// for one-off bookings outside a full run.
func (w *Workflow) NewBooker(s auth.Session) DateBooker {
	return w.newBooker(s)
}

// Run authenticates once, then resolves every target date for the mode.
// Authentication failure is fatal and no dates are attempted; a failed date
// does not stop the remaining ones.
func (w *Workflow) Run(ctx context.Context, mode Mode) RunReport {
	report := RunReport{
		ID:        uuid.New(),
		Mode:      mode,
		StartedAt: w.now(),
	}
	log := w.log.With("run", report.ID.String(), "mode", string(mode))
	log.Info("run starting")

	session, err := w.sessions.EnsureAuthenticated(ctx)
	if err != nil {
		log.Error("authentication failed", "error", err)
		report.Fatal = fmt.Errorf("authenticate: %w", err)
		report.FinishedAt = w.now()
		return report
	}
	report.User = session.Email
	log.Info("authenticated", "user", session.Email, "source", string(session.Source))

	booker := w.newBooker(session)
	for _, target := range TargetDates(w.now(), w.execLead, w.regularOffsets, mode) {
		outcome := booker.BookIfNeeded(ctx, target)
		report.Dates = append(report.Dates, outcome)
		log.Info("date resolved",
			"date", target.Date.Format("2006-01-02"),
			"outcome", string(outcome.Outcome))
	}

	report.FinishedAt = w.now()
	log.Info("run finished", "booked", report.Booked(), "succeeded", report.Succeeded())
	return report
}
