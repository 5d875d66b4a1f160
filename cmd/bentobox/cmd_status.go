package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/layout"
)

func statusCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print every encounter with its derived status",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("status: --at must be RFC3339: %w", err)
				}
				now = t
			}

			board, closeStore, err := loadBoard(ctx, logger)
			if err != nil {
				return fmt.Errorf("status: loading board: %w", err)
			}
			defer func() { _ = closeStore() }()

			loc := cfg.Calendar.Location()
			format := board.TimeFormat()
			encounters := board.Encounters()
			for i, e := range encounters {
				if e.Malformed() {
					fmt.Printf("[%d] [unreadable times] %s\n", i+1, e.Title)
					fmt.Printf("    ID: %s | Template: %s | Duplicate: %t\n", e.ID, e.TemplateID, e.IsDuplicate)
					continue
				}
				start, end := e.Start.In(loc), e.End.In(loc)
				fmt.Printf("[%d] [%s] %s %s %s-%s\n", i+1, bento.DeriveStatus(e, now), e.Title,
					start.Format("Mon Jan 2"), layout.FormatClock(start, format), layout.FormatClock(end, format))
				fmt.Printf("    ID: %s | Template: %s | Duplicate: %t\n", e.ID, e.TemplateID, e.IsDuplicate)
			}
			if len(encounters) == 0 {
				fmt.Println("No encounters scheduled.")
				return nil
			}

			sum := bento.StatusSummary(encounters, now)
			fmt.Printf("\nAt %s: %d scheduled | %d in progress | %d completed | %d cancelled\n",
				now.In(loc).Format(time.RFC3339),
				sum[bento.StatusScheduled], sum[bento.StatusInProgress], sum[bento.StatusCompleted], sum[bento.StatusCancelled])
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "instant to derive status at (RFC3339, default now)")
	return cmd
}
