// internal/cli/run.go
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/tender-radar/tenderscrape/internal/app"
	"github.com/tender-radar/tenderscrape/internal/store"
	"github.com/tender-radar/tenderscrape/internal/ui"
	"github.com/tender-radar/tenderscrape/pkg/models"
)

var (
	runAll   bool
	runForce bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [site]",
	Short: "Scrape one portal, or all of them",
	Long: `Runs a full scrape against the named portal: login, extraction,
deduplication against the tender store, and export of the new notices.

With --all, every registered portal is scraped in sequence with a short
stagger between browser startups. A failing portal does not stop the others.`,
	Example: `  # Scrape a single portal
  tenderscrape run adm

  # Scrape everything
  tenderscrape run --all

  # Re-run a site whose previous run is still marked as running
  tenderscrape run marsamaroc --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runAll, "all", false, "Scrape every registered portal")
	runCmd.Flags().BoolVar(&runForce, "force", false, "Run even when a previous run is still marked as running")
}

func runRun(cmd *cobra.Command, args []string) error {
	appCtx := GetApp()

	if runAll {
		if len(args) > 0 {
			return fmt.Errorf("cannot combine --all with a site argument")
		}
		return runAllSites(cmd.Context(), appCtx)
	}

	if len(args) != 1 {
		return fmt.Errorf("expected a site argument or --all (known sites: %v)", appCtx.ScraperIDs())
	}
	return runOneSite(cmd.Context(), appCtx, args[0])
}

func runOneSite(ctx context.Context, appCtx *app.Application, id string) error {
	sc, ok := appCtx.Scraper(id)
	if !ok {
		return fmt.Errorf("unknown site %q (known sites: %v)", id, appCtx.ScraperIDs())
	}

	var (
		siteID int64
		runID  int64
	)
	if appCtx.Store != nil {
		var err error
		siteID, _, err = appCtx.Store.EnsureSite(ctx, sc.Site(), "")
		if err != nil {
			return err
		}

		running, err := appCtx.Store.HasRunningRun(ctx, siteID)
		if err != nil {
			return err
		}
		if running && !runForce {
			return fmt.Errorf("%w: site %q (use --force to run anyway)", store.ErrRunInProgress, id)
		}

		runID, err = appCtx.Store.StartRun(ctx, siteID)
		if err != nil {
			return err
		}
	}

	log.Info().Str("site", id).Msg("Starting scrape")
	result, err := sc.Scrape(ctx)
	if err != nil {
		if appCtx.Store != nil {
			if ferr := appCtx.Store.FinishRun(ctx, runID, store.RunFailed, 0, 0, err.Error()); ferr != nil {
				log.Warn().Err(ferr).Str("site", id).Msg("Failed to close scrape log")
			}
		}
		return fmt.Errorf("scrape of %q failed: %w", id, err)
	}

	saved := len(result.Records)
	if appCtx.Store != nil {
		saved, err = appCtx.Store.SaveTenders(ctx, siteID, result.Records)
		if err != nil {
			log.Warn().Err(err).Str("site", id).Msg("Failed to persist new tenders")
		}
		if ferr := appCtx.Store.FinishRun(ctx, runID, store.RunCompleted, result.Found, saved, ""); ferr != nil {
			log.Warn().Err(ferr).Str("site", id).Msg("Failed to close scrape log")
		}
	}

	printResult(id, result, saved)
	return nil
}

// runAllSites scrapes every portal in sequence. Startups are staggered so
// six Chrome launches do not land on the machine at once.
func runAllSites(ctx context.Context, appCtx *app.Application) error {
	ids := appCtx.ScraperIDs()
	limiter := rate.NewLimiter(rate.Every(appCtx.Config.Stagger), 1)

	bar := progressbar.NewOptions(len(ids),
		progressbar.OptionSetDescription("scraping portals"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	failed := 0
	for _, id := range ids {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := runOneSite(ctx, appCtx, id); err != nil {
			log.Error().Err(err).Str("site", id).Msg("Scrape failed")
			fmt.Fprintf(os.Stdout, "%s %s: %v\n", ui.Error("✗"), id, err)
			failed++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if failed > 0 {
		return fmt.Errorf("%d of %d portals failed", failed, len(ids))
	}
	return nil
}

func printResult(id string, result *models.Result, saved int) {
	fmt.Fprintf(os.Stdout, "%s %s: %d found, %d new\n",
		ui.Success("✓"), id, result.Found, len(result.Records))
	for _, rec := range result.Records {
		deadline := rec.DeadlineText
		if deadline == "" {
			deadline = "N/A"
		}
		fmt.Fprintf(os.Stdout, "  %s %s(%s)%s\n", rec.Title, ui.ColorDim, deadline, ui.ColorReset)
	}
	if saved != len(result.Records) {
		fmt.Fprintf(os.Stdout, "  %s\n", ui.Info(fmt.Sprintf("%d of %d persisted to the store", saved, len(result.Records))))
	}
}
