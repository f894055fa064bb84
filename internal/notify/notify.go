package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/elia-parkbot/internal/booking"
	"github.com/example/elia-parkbot/internal/workflow"
)

// Notifier delivers the outcome of a run to the user.
type Notifier interface {
	Notify(ctx context.Context, report workflow.RunReport) error
}

// MultiNotifier fans a report out to several notifiers. One failing channel
// does not silence the others.
type MultiNotifier struct {
	notifiers []Notifier
}

func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

func (m *MultiNotifier) Notify(ctx context.Context, report workflow.RunReport) error {
	var lastErr error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, report); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// NoopNotifier swallows reports, used when no channel is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, report workflow.RunReport) error { return nil }

var outcomeLabels = map[booking.Outcome]string{
	booking.OutcomeBooked:          "booked",
	booking.OutcomeAlreadyBooked:   "already booked",
	booking.OutcomeSkippedWeekend:  "weekend",
	booking.OutcomeSkippedVacation: "vacation",
	booking.OutcomeSkippedNoSpots:  "no spots left",
	booking.OutcomeFailed:          "FAILED",
}

// FormatReport renders a run report as the message the channels send.
func FormatReport(report workflow.RunReport) string {
	var b strings.Builder

	if report.Fatal != nil {
		fmt.Fprintf(&b, "Parking run failed: %v\n", report.Fatal)
		return strings.TrimRight(b.String(), "\n")
	}

	fmt.Fprintf(&b, "Parking run finished: %d booked\n", report.Booked())
	for _, d := range report.Dates {
		label, ok := outcomeLabels[d.Outcome]
		if !ok {
			label = string(d.Outcome)
		}
		line := fmt.Sprintf("%s (%s): %s", d.Date.Format("2006-01-02"), d.Date.Weekday().String()[:3], label)
		if d.Spot != nil {
			line += " " + d.Spot.Name
		}
		if d.Err != nil {
			line += fmt.Sprintf(" (%v)", d.Err)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
