package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budgetledger/internal/seed"
)

func seedCmd() *cobra.Command {
	var withEvents bool
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load fixture data through the ledger",
		Long:  "Load clients, POCs, projects, estimations, payments, milestones, additional requests and holds from a YAML file. Records refer to each other by their key field. With the memory store the data only lives for the run, which checks the file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := newApp(ctx, withEvents)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := seed.Load(ctx, a.ledger, f, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d clients, %d pocs, %d projects, %d estimations, %d payments, %d milestones, %d requests, %d holds\n",
				res.Clients, res.POCs, res.Projects, res.Estimations, res.Payments, res.Milestones, res.Requests, res.Holds)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withEvents, "events", false, "Publish ledger events while seeding")
	return cmd
}
