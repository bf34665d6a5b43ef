// Package gbifimport implements the GBIF import subcommand.
package gbifimport

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecoatlas/ecoatlas-go/internal/conf"
	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
	"github.com/ecoatlas/ecoatlas-go/internal/gbif"
	"github.com/ecoatlas/ecoatlas-go/internal/logging"
)

// Command returns the import subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var speciesLimit, occurrenceLimit int

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import species and occurrences from GBIF",
		RunE: func(cmd *cobra.Command, args []string) error {
			if speciesLimit > 0 {
				settings.GBIF.SpeciesLimit = speciesLimit
			}
			if occurrenceLimit > 0 {
				settings.GBIF.OccurrenceLimit = occurrenceLimit
			}
			return runImport(cmd.Context(), settings)
		},
	}

	cmd.Flags().IntVar(&speciesLimit, "species", 0, "Number of species to import (overrides config)")
	cmd.Flags().IntVar(&occurrenceLimit, "occurrences", 0, "Occurrences per species (overrides config)")

	return cmd
}

func runImport(ctx context.Context, settings *conf.Settings) error {
	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("Failed to close datastore", "error", err)
		}
	}()

	client := gbif.NewClient(gbif.Config{
		BaseURL:   settings.GBIF.APIURL,
		RateLimit: settings.GBIF.RateLimit,
	})
	importer := gbif.NewImporter(client, store)

	stats, err := importer.Run(ctx, settings.GBIF.SpeciesLimit, settings.GBIF.OccurrenceLimit)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d species (%d skipped, %d occurrences, %d failures)\n",
		stats.SpeciesCreated, stats.SpeciesSkipped, stats.OccurrenceCount, stats.Failures)
	return nil
}
