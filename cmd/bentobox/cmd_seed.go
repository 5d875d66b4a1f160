package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/bentobox/factory"
	"github.com/warp/bentobox/generic"
)

func seedCmd() *cobra.Command {
	var (
		reset  bool
		anchor string
	)

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Apply a YAML or JSON seed document to the board",
		Long:  "Adds the seed's atoms, templates, pool entries and encounters. Encounter days are counted from the start of the week containing --anchor (default: today).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			seed, err := factory.ParseSeed(data)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			loc := cfg.Calendar.Location()
			at := time.Now().In(loc)
			if anchor != "" {
				at, err = time.ParseInLocation("2006-01-02", anchor, loc)
				if err != nil {
					return fmt.Errorf("seed: --anchor must be YYYY-MM-DD: %w", err)
				}
			}

			board, closeStore, err := loadBoard(ctx, logger)
			if err != nil {
				return fmt.Errorf("seed: loading board: %w", err)
			}
			defer func() { _ = closeStore() }()

			if reset {
				board.Reset(ctx)
			}
			week := generic.WeekOf(at, generic.ParseWeekday(cfg.Calendar.WeekStart))
			sum, err := factory.NewSeedFactory().Apply(ctx, board, seed, week.Start)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			fmt.Printf("Seeded %q for the week of %s\n", seed.Name, week.Start.Format("Mon Jan 2 2006"))
			fmt.Printf("  atoms: %d | templates: %d | pool: %d | encounters: %d\n",
				sum.Atoms, sum.Templates, sum.Pool, sum.Encounters)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "clear the board before seeding")
	cmd.Flags().StringVar(&anchor, "anchor", "", "any date in the target week (YYYY-MM-DD)")
	return cmd
}
