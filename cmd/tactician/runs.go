package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tactician/internal/store"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent script runs from the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, err := store.Open(cfg.Ledger.Path)
		if err != nil {
			return err
		}
		defer ledger.Close()

		runs, err := ledger.ListRuns(runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println(dimStyle.Render("no recorded runs"))
			return nil
		}

		for _, r := range runs {
			var badge string
			switch r.Status {
			case "proved":
				badge = provedStyle.Render("PROVED")
			case "open":
				badge = openStyle.Render("OPEN  ")
			default:
				badge = errorStyle.Render("ERROR ")
			}
			fmt.Printf("%s %s %s %s\n",
				dimStyle.Render(r.Started.Format("2006-01-02 15:04:05")),
				badge,
				fileStyle.Render(r.Problem),
				dimStyle.Render(fmt.Sprintf("closed=%d open=%d applied=%d", r.Closed, r.Open, r.Applied)))
			if r.Error != "" {
				fmt.Printf("  %s\n", errorStyle.Render(r.Error))
			}
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
}
