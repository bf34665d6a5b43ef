package enrichment

import (
	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
)

// applyBackfill copies extracted values into unset record fields and
// reports whether anything changed. A non-nil field is never overwritten,
// even when the extracted value differs. Size claims arrive in meters and
// are converted to centimeters here.
func applyBackfill(sp *datastore.Species, result *enrichResult) bool {
	dirty := false
	claims := &result.claims

	if sp.SizeAdultCm == nil && claims.SizeM != nil {
		cm := *claims.SizeM * 100.0
		sp.SizeAdultCm = &cm
		dirty = true
	}
	if sp.WeightAdultKg == nil && claims.WeightKg != nil {
		v := *claims.WeightKg
		sp.WeightAdultKg = &v
		dirty = true
	}
	if sp.Population == nil && claims.Population != nil {
		v := *claims.Population
		sp.Population = &v
		dirty = true
	}
	if sp.Diet == nil && claims.Diet != nil {
		v := *claims.Diet
		sp.Diet = &v
		dirty = true
	}
	if sp.IUCNStatus == nil && claims.IUCNStatus != nil {
		v := *claims.IUCNStatus
		sp.IUCNStatus = &v
		dirty = true
	}
	if sp.Habitat == nil && claims.Habitat != nil {
		v := *claims.Habitat
		sp.Habitat = &v
		dirty = true
	}
	if sp.LifespanYears == nil && claims.LifespanYears != nil {
		v := *claims.LifespanYears
		sp.LifespanYears = &v
		dirty = true
	}
	if sp.SpeedKmh == nil && claims.SpeedKmh != nil {
		v := *claims.SpeedKmh
		sp.SpeedKmh = &v
		dirty = true
	}
	if sp.RangeDescription == nil && claims.RangeDescription != nil {
		v := *claims.RangeDescription
		sp.RangeDescription = &v
		dirty = true
	}
	if (sp.PhotoURL == nil || *sp.PhotoURL == "") && result.photoURL != "" {
		v := result.photoURL
		sp.PhotoURL = &v
		dirty = true
	}

	return dirty
}
