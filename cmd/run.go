package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/elia-parkbot/internal/notify"
	"github.com/example/elia-parkbot/internal/workflow"
)

func newRunCmd(configPath *string) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the smart booking pass: tomorrow's executive spot plus the far-out regular dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}

			m, err := parseMode(mode)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			report := a.flow.Run(ctx, m)
			a.notify(ctx, report)

			fmt.Fprintln(os.Stdout, notify.FormatReport(report))
			if report.Fatal != nil {
				return report.Fatal
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "all", "which dates to cover: all, executive or regular")
	return cmd
}

func parseMode(s string) (workflow.Mode, error) {
	switch workflow.Mode(s) {
	case workflow.ModeAll, workflow.ModeExecutive, workflow.ModeRegular:
		return workflow.Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want all, executive or regular)", s)
}
