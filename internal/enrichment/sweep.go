package enrichment

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
)

// needsEnrichment reports whether any enrichable field is still unset.
func needsEnrichment(sp *datastore.Species) bool {
	return sp.Population == nil ||
		sp.SizeAdultCm == nil ||
		sp.WeightAdultKg == nil ||
		sp.Diet == nil ||
		sp.IUCNStatus == nil ||
		sp.Habitat == nil ||
		sp.LifespanYears == nil ||
		sp.SpeedKmh == nil ||
		sp.RangeDescription == nil ||
		sp.PhotoURL == nil
}

// BackfillSweep runs EnrichAndBackfill over every species that still has
// empty enrichable fields, paced by the limiter. Returns the number of
// records that were written. Enrichment misses are not failures; only a
// persistence error or context cancellation stops the sweep.
func (s *Service) BackfillSweep(ctx context.Context, limiter *rate.Limiter) (int, error) {
	list, err := s.store.SpeciesList(nil)
	if err != nil {
		return 0, err
	}

	logger.Info("Starting backfill sweep", "species_total", len(list))

	written := 0
	for i := range list {
		sp := &list[i]
		if !needsEnrichment(sp) {
			continue
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return written, err
			}
		}

		before := *sp
		if _, err := s.EnrichAndBackfill(ctx, sp); err != nil {
			return written, err
		}
		if changed(&before, sp) {
			written++
		}
	}

	logger.Info("Backfill sweep complete", "written", written)
	return written, nil
}

// changed reports whether the backfill touched any enrichable field.
func changed(before, after *datastore.Species) bool {
	return !equalPtr(before.Population, after.Population) ||
		!equalPtr(before.SizeAdultCm, after.SizeAdultCm) ||
		!equalPtr(before.WeightAdultKg, after.WeightAdultKg) ||
		!equalPtr(before.Diet, after.Diet) ||
		!equalPtr(before.IUCNStatus, after.IUCNStatus) ||
		!equalPtr(before.Habitat, after.Habitat) ||
		!equalPtr(before.LifespanYears, after.LifespanYears) ||
		!equalPtr(before.SpeedKmh, after.SpeedKmh) ||
		!equalPtr(before.RangeDescription, after.RangeDescription) ||
		!equalPtr(before.PhotoURL, after.PhotoURL)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
