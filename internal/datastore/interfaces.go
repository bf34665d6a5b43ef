// Package datastore provides GORM backed persistence for species and
// occurrence records, with SQLite and MySQL backends.
package datastore

import (
	"strings"

	"gorm.io/gorm"

	"github.com/ecoatlas/ecoatlas-go/internal/conf"
	"github.com/ecoatlas/ecoatlas-go/internal/errors"
)

// SpeciesFilters narrows a species listing. Zero values mean "no filter".
type SpeciesFilters struct {
	LifeZone string
	Biome    string
	Search   string // case-insensitive substring match on either name
	Year     *int   // only species with an occurrence window covering this year
	Limit    int
	Offset   int
}

// OccurrenceFilters narrows an occurrence listing for one species.
type OccurrenceFilters struct {
	FromYear *int
	ToYear   *int
	Source   string
}

// Interface defines the datastore operations.
type Interface interface {
	Open() error
	Close() error

	GetSpecies(id uint) (*Species, error)
	GetSpeciesByGBIFID(gbifID int64) (*Species, error)
	SpeciesList(filters *SpeciesFilters) ([]Species, error)
	SearchSpecies(query string, limit, offset int) ([]Species, error)
	CountSpecies() (int64, error)
	SaveSpecies(sp *Species) error
	UpdateSpecies(sp *Species) error

	GetOccurrences(speciesID uint, filters *OccurrenceFilters) ([]Occurrence, error)
	CountOccurrences() (int64, error)
	SaveOccurrence(occ *Occurrence) error
	SaveOccurrences(occs []Occurrence) error

	ResetSpeciesData() error
}

// DataStore implements Interface using a GORM database handle.
type DataStore struct {
	DB *gorm.DB
}

// dbError wraps a gorm error with datastore context.
func dbError(err error, operation string) error {
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Build()
}

// notFoundError builds a not-found error for a missing record.
func notFoundError(operation string, key string, value any) error {
	return errors.Newf("%s: no matching record", operation).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Context("operation", operation).
		Context(key, value).
		Build()
}

// GetSpecies retrieves a species with its occurrences preloaded.
func (ds *DataStore) GetSpecies(id uint) (*Species, error) {
	var sp Species
	err := ds.DB.Preload("Occurrences").First(&sp, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("get_species", "species_id", id)
		}
		return nil, dbError(err, "get_species")
	}
	return &sp, nil
}

// GetSpeciesByGBIFID retrieves a species by its GBIF taxon key.
func (ds *DataStore) GetSpeciesByGBIFID(gbifID int64) (*Species, error) {
	var sp Species
	err := ds.DB.Where("gbif_id = ?", gbifID).First(&sp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("get_species_by_gbif_id", "gbif_id", gbifID)
		}
		return nil, dbError(err, "get_species_by_gbif_id")
	}
	return &sp, nil
}

// SpeciesList returns species matching the given filters, ordered by
// scientific name. The year filter joins occurrences and keeps species with
// at least one window overlapping the year, treating NULL bounds as open.
func (ds *DataStore) SpeciesList(filters *SpeciesFilters) ([]Species, error) {
	if filters == nil {
		filters = &SpeciesFilters{}
	}

	query := ds.DB.Model(&Species{})

	if filters.Year != nil {
		query = query.
			Joins("JOIN occurrences ON occurrences.species_id = species.id").
			Where("(occurrences.start_year IS NULL OR occurrences.start_year <= ?)", *filters.Year).
			Where("(occurrences.end_year IS NULL OR occurrences.end_year >= ?)", *filters.Year).
			Distinct("species.*")
	}
	if filters.LifeZone != "" {
		query = query.Where("species.life_zone = ?", filters.LifeZone)
	}
	if filters.Biome != "" {
		query = query.Where("species.biome = ?", filters.Biome)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(species.common_name) LIKE ? OR LOWER(species.scientific_name) LIKE ?", pattern, pattern)
	}

	query = query.Order("species.scientific_name")
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var species []Species
	if err := query.Find(&species).Error; err != nil {
		return nil, dbError(err, "species_list")
	}
	return species, nil
}

// SearchSpecies returns species whose common or scientific name contains
// the query, case-insensitively, for autocomplete use.
func (ds *DataStore) SearchSpecies(query string, limit, offset int) ([]Species, error) {
	return ds.SpeciesList(&SpeciesFilters{Search: query, Limit: limit, Offset: offset})
}

// CountSpecies returns the total number of species records.
func (ds *DataStore) CountSpecies() (int64, error) {
	var count int64
	if err := ds.DB.Model(&Species{}).Count(&count).Error; err != nil {
		return 0, dbError(err, "count_species")
	}
	return count, nil
}

// SaveSpecies inserts a new species record, including any attached
// occurrences.
func (ds *DataStore) SaveSpecies(sp *Species) error {
	if err := ds.DB.Create(sp).Error; err != nil {
		return dbError(err, "save_species")
	}
	return nil
}

// UpdateSpecies persists all column values of an existing species in a
// single transaction. Occurrence associations are not touched.
func (ds *DataStore) UpdateSpecies(sp *Species) error {
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Occurrences").Save(sp).Error
	})
	if err != nil {
		return dbError(err, "update_species")
	}
	return nil
}

// GetOccurrences returns occurrences for a species, optionally filtered by
// year window overlap and source.
func (ds *DataStore) GetOccurrences(speciesID uint, filters *OccurrenceFilters) ([]Occurrence, error) {
	if filters == nil {
		filters = &OccurrenceFilters{}
	}

	query := ds.DB.Where("species_id = ?", speciesID)

	if filters.FromYear != nil {
		query = query.Where("(end_year IS NULL OR end_year >= ?)", *filters.FromYear)
	}
	if filters.ToYear != nil {
		query = query.Where("(start_year IS NULL OR start_year <= ?)", *filters.ToYear)
	}
	if filters.Source != "" {
		query = query.Where("source = ?", filters.Source)
	}

	var occurrences []Occurrence
	if err := query.Order("id").Find(&occurrences).Error; err != nil {
		return nil, dbError(err, "get_occurrences")
	}
	return occurrences, nil
}

// CountOccurrences returns the total number of occurrence records.
func (ds *DataStore) CountOccurrences() (int64, error) {
	var count int64
	if err := ds.DB.Model(&Occurrence{}).Count(&count).Error; err != nil {
		return 0, dbError(err, "count_occurrences")
	}
	return count, nil
}

// SaveOccurrence inserts a single occurrence record.
func (ds *DataStore) SaveOccurrence(occ *Occurrence) error {
	if err := ds.DB.Create(occ).Error; err != nil {
		return dbError(err, "save_occurrence")
	}
	return nil
}

// SaveOccurrences inserts occurrence records in one batch.
func (ds *DataStore) SaveOccurrences(occs []Occurrence) error {
	if len(occs) == 0 {
		return nil
	}
	if err := ds.DB.Create(&occs).Error; err != nil {
		return dbError(err, "save_occurrences")
	}
	return nil
}

// ResetSpeciesData deletes all occurrence and species rows in one
// transaction. Used by the seed reload operation.
func (ds *DataStore) ResetSpeciesData() error {
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Occurrence{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Species{}).Error
	})
	if err != nil {
		return dbError(err, "reset_species_data")
	}
	return nil
}

// New creates the store matching the enabled backend in settings.
func New(settings *conf.Settings) Interface {
	if settings.Database.MySQL.Enabled {
		return &MySQLStore{Settings: settings}
	}
	return &SQLiteStore{Settings: settings}
}
