package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tidbyt.dev/transit"
	"tidbyt.dev/transit/model"
	"tidbyt.dev/transit/reload"
)

var (
	maxTransfers int
	numAlts      int
)

var routeCmd = &cobra.Command{
	Use:   "route <origin_stop_id> <destination_stop_id>",
	Short: "Find the best itinerary between two stops",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		planner, err := buildPlanner(cmd.Context())
		if err != nil {
			return err
		}

		if numAlts > 1 {
			itineraries, err := planner.FindKItineraries(cmd.Context(), args[0], args[1], 0, "", numAlts, maxTransfers)
			if err != nil {
				return err
			}
			for i, it := range itineraries {
				printItinerary(i, it)
			}
			return nil
		}

		it, err := planner.FindBestItinerary(cmd.Context(), args[0], args[1], 0, "", maxTransfers)
		if err != nil {
			return err
		}
		printItinerary(0, it)
		return nil
	},
}

func init() {
	routeCmd.Flags().IntVar(&maxTransfers, "max-transfers", transit.DefaultMaxTransfers, "maximum number of transfers")
	routeCmd.Flags().IntVar(&numAlts, "alternatives", 1, "number of alternative itineraries to search for")
}

func buildPlanner(ctx context.Context) (*transit.Planner, error) {
	if len(dataDirs) == 0 {
		return nil, fmt.Errorf("at least one --data mode=directory flag is required")
	}

	var sources []reload.ModeSource
	var order []model.Mode
	for mode, dir := range dataDirs {
		m := model.Mode(mode)
		sources = append(sources, reload.ModeSource{Mode: m, Dir: dir})
		order = append(order, m)
	}

	coordinator, err := reload.New(ctx, reload.Config{Sources: sources, ModeOrder: order})
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	return transit.NewPlanner(coordinator, nil), nil
}

func printItinerary(i int, it *model.Itinerary) {
	fmt.Printf("itinerary %d: %s -> %s, %d min, %d transfers\n",
		i, it.OriginStopID, it.DestinationStopID, it.DurationMinutes, it.NumTransfers)
	for _, leg := range it.Legs {
		if leg.IsTransfer {
			fmt.Printf("  transfer: %s -> %s\n", leg.FromStopName, leg.ToStopName)
			continue
		}
		fmt.Printf("  %s (%s): %s -> %s\n", leg.RouteName, leg.TripID, leg.FromStopName, leg.ToStopName)
	}
}
