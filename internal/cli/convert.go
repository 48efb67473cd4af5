// internal/cli/convert.go
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tender-radar/tenderscrape/internal/dateparse"
	"github.com/tender-radar/tenderscrape/internal/export"
	"github.com/tender-radar/tenderscrape/internal/ui"
)

// convertDatesCmd represents the convert-dates command
var convertDatesCmd = &cobra.Command{
	Use:   "convert-dates [site]",
	Short: "Recompute the ISO deadline column in existing exports",
	Long: `Re-runs deadline normalization over the accumulated exports and rewrites
them in place. Run it after the date parser learns a new portal format so
that records scraped earlier pick up their ISO deadline retroactively.
Without a site argument every export is converted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvertDates,
}

func init() {
	rootCmd.AddCommand(convertDatesCmd)
}

func runConvertDates(cmd *cobra.Command, args []string) error {
	appCtx := GetApp()

	var ids []string
	if len(args) == 1 {
		if _, ok := appCtx.Scraper(args[0]); !ok {
			return fmt.Errorf("unknown site %q (known sites: %v)", args[0], appCtx.ScraperIDs())
		}
		ids = args
	} else {
		ids = appCtx.ScraperIDs()
	}

	for _, id := range ids {
		jsonPath := filepath.Join(appCtx.Config.DataDir, id, id+"_tenders.json")
		records := export.LoadAccumulated(jsonPath)
		if len(records) == 0 {
			continue
		}

		changed := 0
		for i := range records {
			iso := dateparse.Normalize(records[i].DeadlineText)
			if iso != records[i].DeadlineISO {
				records[i].DeadlineISO = iso
				changed++
			}
		}
		if changed == 0 {
			fmt.Fprintf(os.Stdout, "%s %s: %d records, already normalized\n", ui.Info("·"), id, len(records))
			continue
		}
		if err := appCtx.Sink.Rewrite(id, records); err != nil {
			return fmt.Errorf("rewrite of %s failed: %w", id, err)
		}
		fmt.Fprintf(os.Stdout, "%s %s: %d records, %d dates updated\n", ui.Success("✓"), id, len(records), changed)
	}
	return nil
}
