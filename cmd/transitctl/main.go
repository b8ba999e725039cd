package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "transitctl",
	Short:        "Multimodal transit planner tool",
	Long:         "Loads a static multimodal dataset and answers routing/lookup queries against it",
	SilenceUsage: true,
}

var (
	dataDirs map[string]string
)

func init() {
	dataDirs = map[string]string{}
	rootCmd.PersistentFlags().StringToStringVarP(
		&dataDirs,
		"data",
		"",
		map[string]string{},
		"mode=directory pairs, e.g. --data metro=./data/metro --data bus=./data/bus",
	)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(stopsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
