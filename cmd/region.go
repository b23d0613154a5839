package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/poi-sync/internal/geo"
	"github.com/sells-group/poi-sync/internal/model"
)

var regionCmd = &cobra.Command{
	Use:   "region <address>",
	Short: "Show which region the fallback table assigns to an address",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := geo.EngineFor(cfg.Geo.RulesFile)
		if err != nil {
			return err
		}
		printRegion(cmd.OutOrStdout(), engine.Resolve(strings.Join(args, " ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionCmd)
}

func printRegion(w io.Writer, m geo.Match) {
	rule := fmt.Sprintf("%q", m.Rule.Pattern)
	if m.IsDefault {
		rule = "none (default region)"
	}
	fmt.Fprintf(w, "Region:     %s\n", m.Region.Name)
	fmt.Fprintf(w, "Rule:       %s\n", rule)
	fmt.Fprintf(w, "Coordinate: %s\n", model.FormatLocation(m.Region.Latitude, m.Region.Longitude))
}
