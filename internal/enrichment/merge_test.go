package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
	"github.com/ecoatlas/ecoatlas-go/internal/wikidata"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }
func str(v string) *string   { return &v }

func TestApplyBackfillFillsEmptyFields(t *testing.T) {
	t.Parallel()

	sp := &datastore.Species{}
	result := &enrichResult{
		claims: wikidata.BioClaims{
			SizeM:      f64(1.5),
			WeightKg:   f64(190.5),
			Population: i64(20000),
			IUCNStatus: str("Q278113"),
		},
		photoURL: "https://upload.wikimedia.org/lion.jpg",
	}

	dirty := applyBackfill(sp, result)

	assert.True(t, dirty)
	require.NotNil(t, sp.SizeAdultCm)
	assert.InDelta(t, 150.0, *sp.SizeAdultCm, 0.001)
	require.NotNil(t, sp.WeightAdultKg)
	assert.InDelta(t, 190.5, *sp.WeightAdultKg, 0.001)
	require.NotNil(t, sp.Population)
	assert.Equal(t, int64(20000), *sp.Population)
	require.NotNil(t, sp.IUCNStatus)
	assert.Equal(t, "Q278113", *sp.IUCNStatus)
	require.NotNil(t, sp.PhotoURL)
	assert.Equal(t, "https://upload.wikimedia.org/lion.jpg", *sp.PhotoURL)
}

func TestApplyBackfillPreservesExistingValues(t *testing.T) {
	t.Parallel()

	sp := &datastore.Species{
		WeightAdultKg: f64(100.0),
		SizeAdultCm:   f64(80.0),
	}
	result := &enrichResult{
		claims: wikidata.BioClaims{
			SizeM:    f64(1.5),
			WeightKg: f64(190.5),
		},
	}

	dirty := applyBackfill(sp, result)

	assert.False(t, dirty)
	assert.InDelta(t, 100.0, *sp.WeightAdultKg, 0.001)
	assert.InDelta(t, 80.0, *sp.SizeAdultCm, 0.001)
}

func TestApplyBackfillEmptyResultIsClean(t *testing.T) {
	t.Parallel()

	sp := &datastore.Species{}
	dirty := applyBackfill(sp, &enrichResult{})

	assert.False(t, dirty)
	assert.Nil(t, sp.WeightAdultKg)
	assert.Nil(t, sp.PhotoURL)
}

func TestApplyBackfillMixedFields(t *testing.T) {
	t.Parallel()

	sp := &datastore.Species{
		WeightAdultKg: f64(100.0),
	}
	result := &enrichResult{
		claims: wikidata.BioClaims{
			WeightKg:      f64(190.5),
			LifespanYears: f64(15),
		},
	}

	dirty := applyBackfill(sp, result)

	assert.True(t, dirty)
	assert.InDelta(t, 100.0, *sp.WeightAdultKg, 0.001)
	require.NotNil(t, sp.LifespanYears)
	assert.InDelta(t, 15.0, *sp.LifespanYears, 0.001)
}

func TestApplyBackfillEmptyStoredPhotoIsFillable(t *testing.T) {
	t.Parallel()

	empty := ""
	sp := &datastore.Species{PhotoURL: &empty}
	result := &enrichResult{photoURL: "https://upload.wikimedia.org/lion.jpg"}

	dirty := applyBackfill(sp, result)

	assert.True(t, dirty)
	assert.Equal(t, "https://upload.wikimedia.org/lion.jpg", *sp.PhotoURL)
}
