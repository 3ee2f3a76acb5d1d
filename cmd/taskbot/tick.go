package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskbot/internal/config"
	"taskbot/internal/model"
	"taskbot/internal/service"
)

func newTickCmd(configPath *string) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run one recurrence tick and exit",
		Long:  "Clone every recurring task due on the given day (today by default) and move its rule forward.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			loc, err := cfg.Location()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			var clock service.Clock = service.SystemClock{Location: loc}
			if date != "" {
				day, err := model.ParseDate(date, loc)
				if err != nil {
					return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", date)
				}
				clock = service.FixedClock{At: day}
			}

			store, closeDB, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			report, err := service.NewRecurrenceService(store, clock).RunTick(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "date=%s fired=%d skipped=%d\n", report.Date, report.Fired, report.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "run as of this YYYY-MM-DD day instead of today")
	return cmd
}
