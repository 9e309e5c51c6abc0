package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gearqueue/internal/jobqueue"
	"gearqueue/internal/queue"
)

type statsView struct {
	High     int `json:"high"`
	Normal   int `json:"normal"`
	Low      int `json:"low"`
	Total    int `json:"total"`
	Restored int `json:"restored"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Restore persisted jobs into a job server and show per-priority counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			server := jobqueue.New(logger)

			var restored int
			err = ctx.withAdapter(cmd.Context(), server, func(*queue.Adapter) error {
				var rerr error
				restored, rerr = server.Restore(cmd.Context())
				return rerr
			})
			if err != nil {
				return err
			}

			stats := server.Stats()
			if jsonOutput {
				return writeJSON(cmd, statsView{
					High:     stats.Queued[queue.PriorityHigh],
					Normal:   stats.Queued[queue.PriorityNormal],
					Low:      stats.Queued[queue.PriorityLow],
					Total:    stats.Total(),
					Restored: restored,
				})
			}

			title := cases.Title(language.Und)
			priorities := []queue.Priority{queue.PriorityHigh, queue.PriorityNormal, queue.PriorityLow}
			rows := make([][]string, 0, len(priorities))
			for _, p := range priorities {
				rows = append(rows, []string{title.String(p.String()), strconv.Itoa(stats.Queued[p])})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Priority", "Jobs"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
				"Total", strconv.Itoa(stats.Total()),
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
