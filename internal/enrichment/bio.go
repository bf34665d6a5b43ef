// Package enrichment orchestrates the species bio pipeline: resolve the
// name on Wikidata, fetch and extract claims, find a photo, and backfill
// empty local fields.
package enrichment

import (
	"context"
	"io"
	"log"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
	"github.com/ecoatlas/ecoatlas-go/internal/logging"
	"github.com/ecoatlas/ecoatlas-go/internal/wikidata"
	"github.com/ecoatlas/ecoatlas-go/internal/wikimedia"
)

// Package-level logger specific to the enrichment service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "enrichment.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "enrichment", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize enrichment file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "enrichment")
		closeLogger = func() error { return nil }
	}
}

// Pipeline stages recorded on SpeciesBio. The stage is a diagnostic
// signal only; it never changes merge behavior.
const (
	StageNoName   = "no_name"  // record has neither name, nothing to look up
	StageResolve  = "resolve"  // name did not resolve to an entity
	StageFetch    = "fetch"    // entity document could not be fetched
	StageComplete = "complete" // extraction ran, fields may still be absent
)

// SpeciesBio is the combined view of stored and freshly extracted bio
// facts for one species. Pointer fields are nil when neither source had a
// value.
type SpeciesBio struct {
	ID             uint   `json:"id"`
	CommonName     string `json:"common_name"`
	ScientificName string `json:"scientific_name"`
	LifeZone       string `json:"life_zone"`
	Biome          string `json:"biome"`

	Population       *int64   `json:"population"`
	SizeAdultCm      *float64 `json:"size_adult_cm"`
	WeightAdultKg    *float64 `json:"weight_adult_kg"`
	Diet             *string  `json:"diet"`
	IUCNStatus       *string  `json:"iucn_status"`
	Habitat          *string  `json:"habitat"`
	LifespanYears    *float64 `json:"lifespan_years"`
	SpeedKmh         *float64 `json:"speed_kmh"`
	RangeDescription *string  `json:"range_description"`
	PhotoURL         *string  `json:"photo_url"`

	// Diagnostics
	EntityID string `json:"entity_id,omitempty"`
	Stage    string `json:"stage,omitempty"`
}

// Service runs the enrichment pipeline against a datastore.
type Service struct {
	wikidata   *wikidata.Client
	photos     wikimedia.PhotoProvider
	store      datastore.Interface
	uploadHost string
}

// NewService creates an enrichment service. The photo provider may be nil,
// in which case only hashed Commons file URLs from image claims are used.
func NewService(wd *wikidata.Client, photos wikimedia.PhotoProvider, store datastore.Interface, uploadHost string) *Service {
	return &Service{
		wikidata:   wd,
		photos:     photos,
		store:      store,
		uploadHost: uploadHost,
	}
}

// lookupName picks the name used for external lookups: scientific name
// first, common name as fallback.
func lookupName(sp *datastore.Species) string {
	if sp.ScientificName != "" {
		return sp.ScientificName
	}
	return sp.CommonName
}

// enrichResult carries the raw pipeline outcome before any merge.
type enrichResult struct {
	claims   wikidata.BioClaims
	photoURL string
	entityID wikidata.EntityID
	stage    string
}

// run executes resolve, fetch, extract and photo lookup. It never returns
// an error: every failure mode degrades to an emptier result.
func (s *Service) run(ctx context.Context, sp *datastore.Species) enrichResult {
	requestID := uuid.New().String()

	name := lookupName(sp)
	if name == "" {
		logger.Debug("Species has no name to look up",
			"request_id", requestID,
			"species_id", sp.ID)
		return enrichResult{stage: StageNoName}
	}

	entityID, err := s.wikidata.Resolve(ctx, name)
	if err != nil {
		logger.Debug("Name resolution miss",
			"request_id", requestID,
			"species_id", sp.ID,
			"name", name)
		return enrichResult{stage: StageResolve, photoURL: s.fetchThumbnail(ctx, sp, name)}
	}

	entity, err := s.wikidata.FetchEntity(ctx, entityID)
	if err != nil {
		logger.Debug("Entity fetch failed",
			"request_id", requestID,
			"species_id", sp.ID,
			"entity_id", entityID,
			"error", err)
		return enrichResult{stage: StageFetch, entityID: entityID, photoURL: s.fetchThumbnail(ctx, sp, name)}
	}

	claims := wikidata.ExtractBio(entity)

	photoURL := s.fetchThumbnail(ctx, sp, name)
	if photoURL == "" && claims.ImageFile != nil {
		photoURL = wikimedia.FileURL(s.uploadHost, *claims.ImageFile)
	}

	logger.Debug("Enrichment pipeline complete",
		"request_id", requestID,
		"species_id", sp.ID,
		"entity_id", entityID,
		"photo_found", photoURL != "")

	return enrichResult{
		claims:   claims,
		photoURL: photoURL,
		entityID: entityID,
		stage:    StageComplete,
	}
}

// fetchThumbnail asks the photo provider for a thumbnail unless the
// record already has a stored photo URL.
func (s *Service) fetchThumbnail(ctx context.Context, sp *datastore.Species, name string) string {
	if sp.PhotoURL != nil && *sp.PhotoURL != "" {
		return ""
	}
	if s.photos == nil {
		return ""
	}
	url, err := s.photos.FetchPhoto(ctx, name)
	if err != nil {
		return ""
	}
	return url
}

// Enrich runs the pipeline without touching the datastore and returns the
// combined view of stored and extracted values.
func (s *Service) Enrich(ctx context.Context, sp *datastore.Species) *SpeciesBio {
	result := s.run(ctx, sp)
	merged := *sp
	applyBackfill(&merged, &result)
	return buildBio(&merged, &result)
}

// EnrichAndBackfill runs the pipeline and persists newly filled fields.
// Fields already set are never overwritten; when any field was filled the
// record is written exactly once. The returned error covers persistence
// only, enrichment failures degrade to absent fields.
func (s *Service) EnrichAndBackfill(ctx context.Context, sp *datastore.Species) (*SpeciesBio, error) {
	result := s.run(ctx, sp)

	if applyBackfill(sp, &result) {
		if err := s.store.UpdateSpecies(sp); err != nil {
			return nil, err
		}
		logger.Info("Backfilled species record",
			"species_id", sp.ID,
			"entity_id", result.entityID)
	}

	return buildBio(sp, &result), nil
}

// buildBio assembles the response view. Stored values win; extracted
// values fill the view for fields the record has no column value for.
func buildBio(sp *datastore.Species, result *enrichResult) *SpeciesBio {
	bio := &SpeciesBio{
		ID:             sp.ID,
		CommonName:     sp.CommonName,
		ScientificName: sp.ScientificName,
		LifeZone:       sp.LifeZone,
		Biome:          sp.Biome,

		Population:       sp.Population,
		SizeAdultCm:      sp.SizeAdultCm,
		WeightAdultKg:    sp.WeightAdultKg,
		Diet:             sp.Diet,
		IUCNStatus:       sp.IUCNStatus,
		Habitat:          sp.Habitat,
		LifespanYears:    sp.LifespanYears,
		SpeedKmh:         sp.SpeedKmh,
		RangeDescription: sp.RangeDescription,
		PhotoURL:         sp.PhotoURL,

		EntityID: string(result.entityID),
		Stage:    result.stage,
	}
	return bio
}
