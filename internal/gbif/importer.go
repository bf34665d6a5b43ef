package gbif

import (
	"context"

	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
	"github.com/ecoatlas/ecoatlas-go/internal/errors"
)

// ImportStats summarizes one import run.
type ImportStats struct {
	SpeciesCreated  int
	SpeciesSkipped  int
	OccurrenceCount int
	Failures        int
}

// Importer writes GBIF taxa and their occurrences into the datastore.
type Importer struct {
	client *Client
	store  datastore.Interface
}

// NewImporter creates an importer using the given client and store.
func NewImporter(client *Client, store datastore.Interface) *Importer {
	return &Importer{client: client, store: store}
}

// Run imports up to speciesLimit Animalia taxa with up to occurrenceLimit
// occurrences each. Taxa already present by GBIF id are skipped, so a
// re-run never duplicates records. A failure on one taxon is counted and
// the run continues with the next.
func (im *Importer) Run(ctx context.Context, speciesLimit, occurrenceLimit int) (*ImportStats, error) {
	logger.Info("Starting GBIF import",
		"species_limit", speciesLimit,
		"occurrence_limit", occurrenceLimit)

	results, err := im.client.SearchSpecies(ctx, KingdomAnimalia, speciesLimit, 0)
	if err != nil {
		return nil, errors.New(err).
			Component("gbif").
			Category(errors.CategoryImport).
			Context("operation", "species_search").
			Build()
	}

	stats := &ImportStats{}

	for _, taxon := range results {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		if taxon.Key == 0 || taxon.ScientificName == "" {
			stats.Failures++
			continue
		}

		// Idempotence: a taxon imported on a previous run is left alone
		if _, err := im.store.GetSpeciesByGBIFID(taxon.Key); err == nil {
			stats.SpeciesSkipped++
			continue
		} else if !errors.IsNotFound(err) {
			return stats, err
		}

		if err := im.importTaxon(ctx, &taxon, occurrenceLimit, stats); err != nil {
			logger.Warn("Failed to import taxon",
				"gbif_id", taxon.Key,
				"scientific_name", taxon.ScientificName,
				"error", err)
			stats.Failures++
		}
	}

	logger.Info("GBIF import complete",
		"created", stats.SpeciesCreated,
		"skipped", stats.SpeciesSkipped,
		"occurrences", stats.OccurrenceCount,
		"failures", stats.Failures)

	return stats, nil
}

func (im *Importer) importTaxon(ctx context.Context, taxon *SpeciesResult, occurrenceLimit int, stats *ImportStats) error {
	gbifID := taxon.Key
	sp := &datastore.Species{
		GBIFID:         &gbifID,
		ScientificName: taxon.ScientificName,
		CommonName:     taxon.VernacularName,
	}
	if err := im.store.SaveSpecies(sp); err != nil {
		return err
	}
	stats.SpeciesCreated++

	occurrences, err := im.client.SearchOccurrences(ctx, taxon.Key, occurrenceLimit)
	if err != nil {
		// The species row stays; occurrences can arrive on a later run
		return err
	}

	rows := make([]datastore.Occurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		if occ.DecimalLatitude == nil || occ.DecimalLongitude == nil {
			continue
		}
		row := datastore.Occurrence{
			SpeciesID: sp.ID,
			Lat:       *occ.DecimalLatitude,
			Lng:       *occ.DecimalLongitude,
			Source:    datastore.SourceGBIF,
		}
		if occ.Year != nil {
			year := *occ.Year
			row.StartYear = &year
			endYear := *occ.Year
			row.EndYear = &endYear
		}
		rows = append(rows, row)
	}

	if err := im.store.SaveOccurrences(rows); err != nil {
		return err
	}
	stats.OccurrenceCount += len(rows)

	logger.Debug("Imported taxon",
		"gbif_id", taxon.Key,
		"scientific_name", taxon.ScientificName,
		"occurrences", len(rows))

	return nil
}
