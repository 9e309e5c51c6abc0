package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gearqueue/internal/queue"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Open the queue database and create the table if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdapter(cmd.Context(), nil, func(adapter *queue.Adapter) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Queue table %s ready in %s\n", adapter.Table(), adapter.Path())
				return nil
			})
		},
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var functionName string
	var priorityName string
	var data string
	var dataFile string

	cmd := &cobra.Command{
		Use:   "add [unique]",
		Short: "Persist a job (a random unique key is generated when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unique := uuid.NewString()
			if len(args) == 1 {
				unique = args[0]
			}
			if unique == "" {
				return errors.New("unique key must not be empty")
			}
			priority, err := queue.ParsePriority(priorityName)
			if err != nil {
				return err
			}
			payload := []byte(data)
			if dataFile != "" {
				payload, err = os.ReadFile(dataFile)
				if err != nil {
					return fmt.Errorf("read data file: %w", err)
				}
			}

			return ctx.withAdapter(cmd.Context(), nil, func(adapter *queue.Adapter) error {
				if err := adapter.Add(cmd.Context(), unique, functionName, payload, priority); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added job %s (function %s, priority %s, %s)\n",
					displayKey(unique), displayKey(functionName), priority, humanize.Bytes(uint64(len(payload))))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&functionName, "function", "f", "", "Function name the job is queued for")
	cmd.Flags().StringVarP(&priorityName, "priority", "p", "normal", "Job priority (high, normal, low)")
	cmd.Flags().StringVar(&data, "data", "", "Job payload")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "Read the job payload from a file")
	_ = cmd.MarkFlagRequired("function")
	cmd.MarkFlagsMutuallyExclusive("data", "data-file")
	return cmd
}

func newDoneCommand(ctx *commandContext) *cobra.Command {
	var functionName string

	cmd := &cobra.Command{
		Use:   "done <unique>",
		Short: "Remove a persisted job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdapter(cmd.Context(), nil, func(adapter *queue.Adapter) error {
				if err := adapter.Done(cmd.Context(), args[0], functionName); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed job %s\n", displayKey(args[0]))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&functionName, "function", "f", "", "Function name (informational)")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Replay and print every persisted job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []queue.Item
			err := ctx.withAdapter(cmd.Context(), nil, func(adapter *queue.Adapter) error {
				return adapter.Replay(cmd.Context(), func(_ context.Context, item queue.Item) error {
					items = append(items, item)
					return nil
				})
			})
			if err != nil {
				return err
			}
			sortItems(items)

			if jsonOutput {
				return writeJSON(cmd, toJobViews(items))
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Queue is empty")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Unique", "Function", "Priority", "Size"},
				jobRows(items),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
