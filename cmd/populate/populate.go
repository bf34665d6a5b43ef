// Package populate implements the seed loader subcommand.
package populate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecoatlas/ecoatlas-go/internal/conf"
	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
	"github.com/ecoatlas/ecoatlas-go/internal/logging"
	"github.com/ecoatlas/ecoatlas-go/internal/species"
)

// Command returns the populate subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Wipe and reload the species catalog from the seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seedFile != "" {
				settings.Species.SeedFile = seedFile
			}
			return runPopulate(settings)
		},
	}

	cmd.Flags().StringVar(&seedFile, "seed-file", "", "Path to the seed JSON file (overrides config)")

	return cmd
}

func runPopulate(settings *conf.Settings) error {
	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("Failed to close datastore", "error", err)
		}
	}()

	created, err := species.Reload(store, settings.Species.SeedFile)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d species from %s\n", created, settings.Species.SeedFile)
	return nil
}
