package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	fuzzyLimit    int
	fuzzyMinScore int
)

var stopsCmd = &cobra.Command{
	Use:   "stops <query>",
	Short: "Fuzzy-search stops by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		planner, err := buildPlanner(cmd.Context())
		if err != nil {
			return err
		}

		matches := planner.FindStopFuzzy(args[0], fuzzyLimit, fuzzyMinScore)
		for _, m := range matches {
			fmt.Printf("%3d  %-10s  %s\n", m.Score, m.Stop.ID, m.Stop.Name)
		}
		return nil
	},
}

func init() {
	stopsCmd.Flags().IntVar(&fuzzyLimit, "limit", 10, "maximum number of results")
	stopsCmd.Flags().IntVar(&fuzzyMinScore, "min-score", 30, "minimum match score (0-100)")
}
