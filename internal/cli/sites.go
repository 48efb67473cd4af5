// internal/cli/sites.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tender-radar/tenderscrape/internal/ui"
)

// sitesCmd represents the sites command
var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the supported portals and their run history",
	RunE:  runSites,
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}

func runSites(cmd *cobra.Command, args []string) error {
	appCtx := GetApp()
	ctx := cmd.Context()

	for _, id := range appCtx.ScraperIDs() {
		sc, _ := appCtx.Scraper(id)
		fmt.Fprintf(os.Stdout, "%s%-16s%s %s\n", ui.ColorCyan, id, ui.ColorReset, sc.Site())

		if appCtx.Store == nil {
			continue
		}
		siteID, ok, err := appCtx.Store.SiteID(ctx, sc.Site())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(os.Stdout, "  %s\n", ui.Info("never scraped"))
			continue
		}
		run, ok, err := appCtx.Store.LastRun(ctx, siteID)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(os.Stdout, "  %s\n", ui.Info("no runs recorded"))
			continue
		}

		line := fmt.Sprintf("last run %s: %s, %d found, %d new",
			run.StartedAt.Format("2006-01-02 15:04"), run.Status, run.ItemsFound, run.ItemsNew)
		if run.Error != "" {
			line += " (" + run.Error + ")"
		}
		fmt.Fprintf(os.Stdout, "  %s\n", ui.Info(line))
	}
	return nil
}
