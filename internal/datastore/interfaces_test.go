package datastore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoatlas/ecoatlas-go/internal/conf"
	"github.com/ecoatlas/ecoatlas-go/internal/errors"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	settings := &conf.Settings{}
	settings.Database.SQLite.Enabled = true
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func seedTestSpecies(t *testing.T, store *SQLiteStore) (lion, eagle, tuna *Species) {
	t.Helper()

	lion = &Species{
		CommonName:     "Lion",
		ScientificName: "Panthera leo",
		LifeZone:       "terrestre",
		Biome:          "savane",
	}
	eagle = &Species{
		CommonName:     "Bald eagle",
		ScientificName: "Haliaeetus leucocephalus",
		LifeZone:       "volant",
		Biome:          "forêt",
	}
	tuna = &Species{
		CommonName:     "Bluefin tuna",
		ScientificName: "Thunnus thynnus",
		LifeZone:       "marin",
		Biome:          "océan",
	}

	for _, sp := range []*Species{lion, eagle, tuna} {
		require.NoError(t, store.SaveSpecies(sp))
	}
	return lion, eagle, tuna
}

func TestGetSpeciesNotFound(t *testing.T) {
	store := createTestStore(t)

	sp, err := store.GetSpecies(9999)

	require.Error(t, err)
	assert.Nil(t, sp)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetSpeciesByGBIFID(t *testing.T) {
	store := createTestStore(t)

	sp := &Species{
		GBIFID:         int64Ptr(5219404),
		ScientificName: "Panthera leo",
	}
	require.NoError(t, store.SaveSpecies(sp))

	found, err := store.GetSpeciesByGBIFID(5219404)
	require.NoError(t, err)
	assert.Equal(t, sp.ID, found.ID)

	_, err = store.GetSpeciesByGBIFID(12345)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestSpeciesListFilters(t *testing.T) {
	store := createTestStore(t)
	_, eagle, tuna := seedTestSpecies(t, store)

	t.Run("life zone filter", func(t *testing.T) {
		list, err := store.SpeciesList(&SpeciesFilters{LifeZone: "marin"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, tuna.ID, list[0].ID)
	})

	t.Run("biome filter", func(t *testing.T) {
		list, err := store.SpeciesList(&SpeciesFilters{Biome: "forêt"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, eagle.ID, list[0].ID)
	})

	t.Run("search is case insensitive and matches both names", func(t *testing.T) {
		list, err := store.SpeciesList(&SpeciesFilters{Search: "PANTHERA"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Panthera leo", list[0].ScientificName)

		list, err = store.SpeciesList(&SpeciesFilters{Search: "tuna"})
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("no filters returns all ordered by scientific name", func(t *testing.T) {
		list, err := store.SpeciesList(nil)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Haliaeetus leucocephalus", list[0].ScientificName)
		assert.Equal(t, "Panthera leo", list[1].ScientificName)
		assert.Equal(t, "Thunnus thynnus", list[2].ScientificName)
	})

	t.Run("limit and offset", func(t *testing.T) {
		list, err := store.SpeciesList(&SpeciesFilters{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Panthera leo", list[0].ScientificName)
	})
}

func TestSpeciesListYearOverlap(t *testing.T) {
	store := createTestStore(t)
	lion, eagle, tuna := seedTestSpecies(t, store)

	require.NoError(t, store.SaveOccurrences([]Occurrence{
		{SpeciesID: lion.ID, Lat: -2.3, Lng: 34.8, StartYear: intPtr(1990), EndYear: intPtr(2000)},
		{SpeciesID: eagle.ID, Lat: 48.5, Lng: -121.7, StartYear: intPtr(2010), EndYear: nil},
		{SpeciesID: tuna.ID, Lat: 41.2, Lng: 2.9, StartYear: nil, EndYear: intPtr(1950)},
	}))

	t.Run("bounded window", func(t *testing.T) {
		list, err := store.SpeciesList(&SpeciesFilters{Year: intPtr(1995)})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, lion.ID, list[0].ID)
	})

	t.Run("nil end year means open ended", func(t *testing.T) {
		list, err := store.SpeciesList(&SpeciesFilters{Year: intPtr(2024)})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, eagle.ID, list[0].ID)
	})

	t.Run("nil start year means open beginning", func(t *testing.T) {
		list, err := store.SpeciesList(&SpeciesFilters{Year: intPtr(1900)})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, tuna.ID, list[0].ID)
	})

	t.Run("several windows never duplicate a species", func(t *testing.T) {
		require.NoError(t, store.SaveOccurrences([]Occurrence{
			{SpeciesID: lion.ID, Lat: -1.0, Lng: 35.0, StartYear: intPtr(1985), EndYear: intPtr(1999)},
		}))
		list, err := store.SpeciesList(&SpeciesFilters{Year: intPtr(1995)})
		require.NoError(t, err)
		require.Len(t, list, 1)
	})
}

func TestUpdateSpecies(t *testing.T) {
	store := createTestStore(t)
	lion, _, _ := seedTestSpecies(t, store)

	weight := 190.5
	lion.WeightAdultKg = &weight
	lion.IUCNStatus = strPtr("Q278113")
	require.NoError(t, store.UpdateSpecies(lion))

	reloaded, err := store.GetSpecies(lion.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.WeightAdultKg)
	assert.InDelta(t, 190.5, *reloaded.WeightAdultKg, 0.001)
	require.NotNil(t, reloaded.IUCNStatus)
	assert.Equal(t, "Q278113", *reloaded.IUCNStatus)
}

func TestGetOccurrencesFilters(t *testing.T) {
	store := createTestStore(t)
	lion, _, _ := seedTestSpecies(t, store)

	require.NoError(t, store.SaveOccurrences([]Occurrence{
		{SpeciesID: lion.ID, Lat: -2.3, Lng: 34.8, StartYear: intPtr(1990), EndYear: intPtr(2000), Source: SourceManual},
		{SpeciesID: lion.ID, Lat: -1.5, Lng: 35.2, StartYear: intPtr(2015), EndYear: intPtr(2020), Source: SourceGBIF},
		{SpeciesID: lion.ID, Lat: -3.0, Lng: 36.0, StartYear: nil, EndYear: nil, Source: SourceManual},
	}))

	t.Run("source filter", func(t *testing.T) {
		occs, err := store.GetOccurrences(lion.ID, &OccurrenceFilters{Source: SourceGBIF})
		require.NoError(t, err)
		require.Len(t, occs, 1)
		assert.InDelta(t, -1.5, occs[0].Lat, 0.001)
	})

	t.Run("year window filter keeps unbounded rows", func(t *testing.T) {
		occs, err := store.GetOccurrences(lion.ID, &OccurrenceFilters{
			FromYear: intPtr(2016),
			ToYear:   intPtr(2024),
		})
		require.NoError(t, err)
		// the 2015-2020 row overlaps, the fully unbounded row always matches
		require.Len(t, occs, 2)
	})

	t.Run("no filters returns all", func(t *testing.T) {
		occs, err := store.GetOccurrences(lion.ID, nil)
		require.NoError(t, err)
		assert.Len(t, occs, 3)
	})
}

func TestResetSpeciesData(t *testing.T) {
	store := createTestStore(t)
	lion, _, _ := seedTestSpecies(t, store)
	require.NoError(t, store.SaveOccurrence(&Occurrence{SpeciesID: lion.ID, Lat: 1, Lng: 2}))

	require.NoError(t, store.ResetSpeciesData())

	speciesCount, err := store.CountSpecies()
	require.NoError(t, err)
	assert.Zero(t, speciesCount)

	occCount, err := store.CountOccurrences()
	require.NoError(t, err)
	assert.Zero(t, occCount)
}

func TestCascadeDeletePreload(t *testing.T) {
	store := createTestStore(t)
	lion, _, _ := seedTestSpecies(t, store)
	require.NoError(t, store.SaveOccurrence(&Occurrence{SpeciesID: lion.ID, Lat: 1, Lng: 2}))

	loaded, err := store.GetSpecies(lion.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Occurrences, 1)
}
