package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/elia-parkbot/internal/booking"
)

func newReserveCmd(configPath *string) *cobra.Command {
	var (
		dateStr   string
		executive bool
	)

	c := &cobra.Command{
		Use:   "reserve",
		Short: "Book a single date, skipping it if already covered",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}

			date, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fmt.Errorf("invalid --date (want YYYY-MM-DD)")
			}

			kind := booking.SpotRegular
			if executive {
				kind = booking.SpotExecutive
			}

			ctx := cmd.Context()
			session, err := a.sessions.EnsureAuthenticated(ctx)
			if err != nil {
				return err
			}

			booker := a.flow.NewBooker(session)
			outcome := booker.BookIfNeeded(ctx, booking.TargetDate{Date: date, Kind: kind})
			if outcome.Err != nil {
				return fmt.Errorf("%s: %w", dateStr, outcome.Err)
			}

			line := fmt.Sprintf("%s: %s", dateStr, outcome.Outcome)
			if outcome.Spot != nil {
				line += " " + outcome.Spot.Name
			}
			fmt.Fprintln(os.Stdout, line)
			return nil
		},
	}

	c.Flags().StringVar(&dateStr, "date", "", "date to book YYYY-MM-DD")
	c.Flags().BoolVar(&executive, "executive", false, "draw from the executive spot pool")
	_ = c.MarkFlagRequired("date")
	return c
}
