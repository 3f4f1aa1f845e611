package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"budgetledger/pkg/outbox"
)

func outboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and replay ledger events stored in the outbox",
	}
	cmd.AddCommand(outboxFailedCmd(), outboxReplayCmd(), outboxRequeueCmd())
	return cmd
}

func outboxFailedCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "failed",
		Short: "List events that exhausted their retries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newOutboxApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			events, err := a.outbox.Failed(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range events {
				fmt.Fprintf(out, "%d\t%s\tretries=%d\t%s\n", e.ID, e.RoutingKey, e.RetryCount, e.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			fmt.Fprintf(out, "%d failed events\n", len(events))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of events to list")
	return cmd
}

func outboxReplayCmd() *cobra.Command {
	var (
		all   bool
		limit int
	)
	cmd := &cobra.Command{
		Use:   "replay [event-id]",
		Short: "Republish one event, or every failed event with --all",
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newOutboxApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			if a.publisher == nil {
				return errors.New("rabbitmq is not reachable")
			}

			svc := outbox.NewReplayService(a.outbox, a.publisher)
			if all {
				n, err := svc.ReplayFailedEvents(cmd.Context(), limit)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "replayed %d events\n", n)
				return nil
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid event id %q", args[0])
			}
			if err := svc.ReplayEvent(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "replayed event %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Replay every failed event")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of events replayed with --all")
	return cmd
}

// outboxRequeueCmd 把事件重置为 pending，交给运行中的 dispatcher 投递
func outboxRequeueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requeue <event-id>",
		Short: "Reset an event to pending so the running server dispatches it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid event id %q", args[0])
			}
			a, err := newOutboxApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.outbox.Reset(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "requeued event %d\n", id)
			return nil
		},
	}
}

// newOutboxApp 要求 postgres 存储并开启 mq.outbox
func newOutboxApp(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return nil, err
	}
	if a.outbox == nil {
		a.close()
		return nil, errors.New("outbox requires store.driver=postgres and mq.outbox=true")
	}
	return a, nil
}
