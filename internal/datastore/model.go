package datastore

// Occurrence source labels.
const (
	SourceManual = "MANUAL"
	SourceSeed   = "SEED"
	SourceGBIF   = "GBIF"
)

// Species represents a catalog record. The nullable pointer fields are the
// enrichment targets: nil means the value has never been established and may
// be backfilled, a non-nil value is never overwritten.
type Species struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	GBIFID         *int64 `gorm:"column:gbif_id;index:idx_species_gbif_id" json:"gbif_id,omitempty"`
	CommonName     string `gorm:"index:idx_species_common_name" json:"common_name"`
	ScientificName string `gorm:"index:idx_species_scientific_name" json:"scientific_name"`
	LifeZone       string `gorm:"index:idx_species_life_zone" json:"life_zone"`
	Biome          string `gorm:"index:idx_species_biome" json:"biome"`

	Population       *int64   `json:"population,omitempty"`
	SizeAdultCm      *float64 `json:"size_adult_cm,omitempty"`
	WeightAdultKg    *float64 `json:"weight_adult_kg,omitempty"`
	Diet             *string  `json:"diet,omitempty"`
	IUCNStatus       *string  `gorm:"column:iucn_status" json:"iucn_status,omitempty"`
	Habitat          *string  `json:"habitat,omitempty"`
	LifespanYears    *float64 `json:"lifespan_years,omitempty"`
	SpeedKmh         *float64 `gorm:"column:speed_kmh" json:"speed_kmh,omitempty"`
	RangeDescription *string  `json:"range_description,omitempty"`
	PhotoURL         *string  `gorm:"column:photo_url" json:"photo_url,omitempty"`

	Occurrences []Occurrence `gorm:"constraint:OnDelete:CASCADE" json:"occurrences,omitempty"`
}

// Occurrence is a geographic sighting window for a species. A nil StartYear
// or EndYear means the window is unbounded on that side.
type Occurrence struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SpeciesID uint    `gorm:"index:idx_occurrences_species_id" json:"species_id"`
	Lat       float64 `gorm:"index:idx_occurrences_location" json:"lat"`
	Lng       float64 `gorm:"index:idx_occurrences_location" json:"lng"`
	StartYear *int    `gorm:"index:idx_occurrences_years" json:"start_year,omitempty"`
	EndYear   *int    `gorm:"index:idx_occurrences_years" json:"end_year,omitempty"`
	Source    string  `gorm:"default:MANUAL" json:"source"`
}
