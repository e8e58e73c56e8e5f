package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/marketscan/internal/api/http"
	"github.com/i474232898/marketscan/internal/engine"
	"github.com/i474232898/marketscan/internal/stats"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// The version needs no configuration.
	PersistentPreRun: func(*cobra.Command, []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marketscan %s (api %s)\n", version, httpapi.Version)
		fmt.Printf("  commit:  %s\n", commit)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [query]",
	Short: "Resolve free text to a market and commodity",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadedService(cmd.Context())
		if err != nil {
			return err
		}
		r, err := svc.Resolve(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("market: %s\ncommodity: %s\n", r.Market, r.Commodity)
		return nil
	},
}

var featuredCmd = &cobra.Command{
	Use:   "featured",
	Short: "List the biggest price movers",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		city, _ := cmd.Flags().GetString("city")
		if limit <= 0 {
			limit = cfg.FeaturedLimit
		}

		svc, err := loadedService(cmd.Context())
		if err != nil {
			return err
		}
		items, err := svc.Featured(limit, city)
		if err != nil {
			return err
		}
		for _, it := range items {
			fmt.Printf("%-16s %-12s %10.2f %s %+7.2f%%\n",
				it.Market, it.Commodity, it.Latest, it.CommodityMeta.Unit, it.ChangePercent)
		}
		return nil
	},
}

func init() {
	featuredCmd.Flags().Int("limit", 0, "number of items (default from config)")
	featuredCmd.Flags().String("city", "", "only markets in this city")
}

var checkCmd = &cobra.Command{
	Use:   "check [query]",
	Short: "Resolve a query, show its prices and ask for a forecast",
	Long: `Resolve a query such as "onion in merkato", or an explicit selection
given with --market and --commodity, then print the price series and a forecast.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _ := cmd.Flags().GetString("market")
		c, _ := cmd.Flags().GetString("commodity")
		asJSON, _ := cmd.Flags().GetBool("json")

		var sess *engine.Session
		switch {
		case m != "" && c != "":
			sess = engine.NewSelectionSession(m, c)
		case len(args) > 0:
			sess = engine.NewQuerySession(strings.Join(args, " "))
		default:
			return fmt.Errorf("give a query or both --market and --commodity")
		}

		svc, err := loadedService(cmd.Context())
		if err != nil {
			return err
		}
		res, err := svc.Check(cmd.Context(), sess)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		v := res.Prices
		fmt.Printf("%s in %s (%s)\n", v.Commodity, v.Market, v.Unit)
		for i, d := range v.Dates {
			fmt.Printf("  %s  %8.2f\n", d, v.Prices[i])
		}
		fmt.Printf("change: %+.2f%% %s\n\n", v.ChangePercent, stats.Trend(v.Prices))
		fmt.Printf("Prediction: %s\nConfidence: %s\nTip: %s\n",
			res.Prediction.Prediction, res.Prediction.Confidence, res.Prediction.Tip)
		return nil
	},
}

func init() {
	checkCmd.Flags().String("market", "", "market id")
	checkCmd.Flags().String("commodity", "", "commodity id")
	checkCmd.Flags().Bool("json", false, "print the result as JSON")
}
