// Package species loads the seed species catalog into the datastore.
package species

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
	"github.com/ecoatlas/ecoatlas-go/internal/errors"
	"github.com/ecoatlas/ecoatlas-go/internal/logging"
)

// Package-level logger specific to the species service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "species.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "species", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize species file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "species")
		closeLogger = func() error { return nil }
	}
}

// Life zone labels used by the map filters. The vocabulary is inherited
// from the seed dataset.
const (
	LifeZoneMarine      = "marin"
	LifeZoneFlying      = "volant"
	LifeZoneTerrestrial = "terrestre"
)

// seedSpecies is one record of the seed JSON file.
type seedSpecies struct {
	CommonName     string           `json:"common_name"`
	ScientificName string           `json:"scientific_name"`
	Biome          string           `json:"biome"`
	Occurrences    []seedOccurrence `json:"occurrences"`
}

type seedOccurrence struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

var (
	marineKeywords = []string{"océan", "ocean", "mer", "récif", "recif"}
	flyingKeywords = []string{"aigle", "perroquet", "ara", "oiseau", "pingouin", "bird"}
)

// InferLifeZone guesses a life zone from the common name and biome text.
// Approximate, but good enough for the map filters.
func InferLifeZone(commonName, biome string) string {
	txt := strings.ToLower(commonName + " " + biome)

	for _, w := range marineKeywords {
		if strings.Contains(txt, w) {
			return LifeZoneMarine
		}
	}
	for _, w := range flyingKeywords {
		if strings.Contains(txt, w) {
			return LifeZoneFlying
		}
	}
	return LifeZoneTerrestrial
}

// GenerateYears derives a deterministic observation window from a seed
// string. The same seed always yields the same window: start in
// 1900-2015, span at most 30 years, capped at 2025.
func GenerateYears(seed string) (startYear, endYear int) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	rnd := rand.New(rand.NewSource(int64(h.Sum64()))) //nolint:gosec -- deterministic windows, not security

	startYear = 1900 + rnd.Intn(116) // 1900..2015
	duration := rnd.Intn(31)         // 0..30
	endYear = startYear + duration
	if endYear > 2025 {
		endYear = 2025
	}
	return startYear, endYear
}

// Reload wipes the species and occurrence tables and inserts the catalog
// from the seed file. Returns the number of species created.
func Reload(store datastore.Interface, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.New(err).
			Component("species").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	var records []seedSpecies
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, errors.New(err).
			Component("species").
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Build()
	}

	if err := store.ResetSpeciesData(); err != nil {
		return 0, err
	}

	logger.Info("Reloading species catalog", "path", path, "records", len(records))

	created := 0
	for _, rec := range records {
		sp := &datastore.Species{
			CommonName:     rec.CommonName,
			ScientificName: rec.ScientificName,
			Biome:          rec.Biome,
			LifeZone:       InferLifeZone(rec.CommonName, rec.Biome),
		}
		if err := store.SaveSpecies(sp); err != nil {
			return created, err
		}

		occs := make([]datastore.Occurrence, 0, len(rec.Occurrences))
		for idx, o := range rec.Occurrences {
			start, end := GenerateYears(fmt.Sprintf("%d:%d", sp.ID, idx))
			startYear, endYear := start, end
			occs = append(occs, datastore.Occurrence{
				SpeciesID: sp.ID,
				Lat:       o.Lat,
				Lng:       o.Lng,
				StartYear: &startYear,
				EndYear:   &endYear,
				Source:    datastore.SourceManual,
			})
		}
		if err := store.SaveOccurrences(occs); err != nil {
			return created, err
		}

		created++
	}

	logger.Info("Species catalog reloaded", "created", created)
	return created, nil
}
