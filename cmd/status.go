package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/elia-parkbot/internal/booking"
)

func newStatusCmd(configPath *string) *cobra.Command {
	var dateStr string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show floor availability per spot class for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}

			date := time.Now().UTC().AddDate(0, 0, 1)
			if dateStr != "" {
				date, err = time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
			}

			ctx := cmd.Context()
			session, err := a.sessions.EnsureAuthenticated(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "user: %s (session from %s)\n", session.Email, session.Source)

			booker := a.eliaBooker(session)
			st, err := booker.Status(ctx, date)
			if err != nil {
				return err
			}
			pct := 0.0
			if st.Total() > 0 {
				pct = float64(st.Available()) / float64(st.Total()) * 100
			}
			fmt.Fprintf(os.Stdout, "%s: %d/%d spots available (%.1f%%)\n",
				date.Format("2006-01-02"), st.Available(), st.Total(), pct)
			fmt.Fprintf(os.Stdout, "  executive: %d/%d available\n", st.Executive.Available(), st.Executive.Total)
			fmt.Fprintf(os.Stdout, "  regular:   %d/%d available\n", st.Regular.Available(), st.Regular.Total)

			existing, err := booker.ExistingBookings(ctx)
			if err != nil {
				return err
			}
			if len(existing) == 0 {
				fmt.Fprintln(os.Stdout, "no upcoming bookings")
				return nil
			}
			fmt.Fprintln(os.Stdout, "upcoming bookings:")
			for _, b := range existing {
				kind := booking.ClassifySpot(b.SpotName)
				fmt.Fprintf(os.Stdout, "  %s  %s (%s)\n", b.Date.Format("2006-01-02"), b.SpotName, kind)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dateStr, "date", "", "date to check (2006-01-02), default tomorrow")
	return cmd
}
