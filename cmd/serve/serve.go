// Package serve implements the API server subcommand.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	apiv2 "github.com/ecoatlas/ecoatlas-go/internal/api/v2"
	"github.com/ecoatlas/ecoatlas-go/internal/conf"
	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
	"github.com/ecoatlas/ecoatlas-go/internal/enrichment"
	"github.com/ecoatlas/ecoatlas-go/internal/gbif"
	"github.com/ecoatlas/ecoatlas-go/internal/logging"
	"github.com/ecoatlas/ecoatlas-go/internal/wikidata"
	"github.com/ecoatlas/ecoatlas-go/internal/wikimedia"
)

// Command returns the serve subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the EcoAtlas API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}
}

func runServer(settings *conf.Settings) error {
	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("Failed to close datastore", "error", err)
		}
	}()

	var enrichSvc *enrichment.Service
	if settings.Enrichment.Enabled {
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

		enrichSvc = enrichment.NewService(wdClient, thumbs, store, settings.Enrichment.UploadHost)
	}

	gbifClient := gbif.NewClient(gbif.Config{
		BaseURL:   settings.GBIF.APIURL,
		RateLimit: settings.GBIF.RateLimit,
	})
	importer := gbif.NewImporter(gbifClient, store)

	e := echo.New()
	e.HideBanner = true

	controller := apiv2.New(e, store, settings, enrichSvc, importer)
	defer controller.Shutdown()

	go func() {
		addr := ":" + settings.WebServer.Port
		logging.Info("Starting API server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logging.Fatal("API server failed", "error", err)
		}
	}()

	// Block until interrupted, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logging.Info("Shutting down API server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
