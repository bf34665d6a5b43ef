// Package enrich implements the batch backfill subcommand.
package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ecoatlas/ecoatlas-go/internal/conf"
	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
	"github.com/ecoatlas/ecoatlas-go/internal/enrichment"
	"github.com/ecoatlas/ecoatlas-go/internal/logging"
	"github.com/ecoatlas/ecoatlas-go/internal/wikidata"
	"github.com/ecoatlas/ecoatlas-go/internal/wikimedia"
)

// Command returns the enrich subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var pace time.Duration

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Backfill empty species fields from Wikidata and Wikimedia",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnrich(cmd.Context(), settings, pace)
		},
	}

	cmd.Flags().DurationVar(&pace, "pace", time.Second, "Minimum delay between enriched records")

	return cmd
}

func runEnrich(ctx context.Context, settings *conf.Settings, pace time.Duration) error {
	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("Failed to close datastore", "error", err)
		}
	}()

	wdClient := wikidata.NewClient(wikidata.Config{
		SearchURL: settings.Enrichment.SearchURL,
		EntityURL: settings.Enrichment.EntityURL,
		Timeout:   settings.Enrichment.Timeout,
		CacheTTL:  settings.Enrichment.CacheTTL,
		UserAgent: settings.Enrichment.UserAgent,
		Debug:     settings.Enrichment.Debug,
	})
	defer wdClient.Close()

	thumbs := wikimedia.NewThumbnailProvider(wikimedia.ThumbnailConfig{
		APIURL:    settings.Enrichment.CommonsAPIURL,
		Size:      settings.Enrichment.ThumbnailSize,
		Timeout:   settings.Enrichment.Timeout,
		UserAgent: settings.Enrichment.UserAgent,
	})

	svc := enrichment.NewService(wdClient, thumbs, store, settings.Enrichment.UploadHost)

	limiter := rate.NewLimiter(rate.Every(pace), 1)
	written, err := svc.BackfillSweep(ctx, limiter)
	if err != nil {
		return err
	}

	fmt.Printf("Backfilled %d species\n", written)
	return nil
}
