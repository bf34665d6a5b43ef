package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
	"github.com/ecoatlas/ecoatlas-go/internal/errors"
)

// Listing sizes.
const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// SpeciesSummary is the list/search DTO: identity and classification
// without the occurrence payload.
type SpeciesSummary struct {
	ID             uint    `json:"id"`
	GBIFID         *int64  `json:"gbif_id,omitempty"`
	CommonName     string  `json:"common_name"`
	ScientificName string  `json:"scientific_name"`
	LifeZone       string  `json:"life_zone"`
	Biome          string  `json:"biome"`
	PhotoURL       *string `json:"photo_url,omitempty"`
}

func toSummary(sp *datastore.Species) SpeciesSummary {
	return SpeciesSummary{
		ID:             sp.ID,
		GBIFID:         sp.GBIFID,
		CommonName:     sp.CommonName,
		ScientificName: sp.ScientificName,
		LifeZone:       sp.LifeZone,
		Biome:          sp.Biome,
		PhotoURL:       sp.PhotoURL,
	}
}

// parseIDParam reads the :id route parameter.
func parseIDParam(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// parseIntQuery reads an optional integer query parameter.
func parseIntQuery(ctx echo.Context, name string) (*int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseLimitOffset reads limit/offset with defaults and a cap.
func parseLimitOffset(ctx echo.Context) (limit, offset int) {
	limit = defaultListLimit
	if v, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && v > 0 {
		limit = min(v, maxListLimit)
	}
	if v, err := strconv.Atoi(ctx.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// GetSpeciesList returns species matching the list filters.
func (c *Controller) GetSpeciesList(ctx echo.Context) error {
	year, err := parseIntQuery(ctx, "year")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid year parameter", http.StatusBadRequest)
	}
	limit, offset := parseLimitOffset(ctx)

	filters := &datastore.SpeciesFilters{
		LifeZone: ctx.QueryParam("life_zone"),
		Biome:    ctx.QueryParam("biome"),
		Search:   ctx.QueryParam("search"),
		Year:     year,
		Limit:    limit,
		Offset:   offset,
	}

	list, err := c.DS.SpeciesList(filters)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list species", http.StatusInternalServerError)
	}

	summaries := make([]SpeciesSummary, 0, len(list))
	for i := range list {
		summaries = append(summaries, toSummary(&list[i]))
	}

	return ctx.JSON(http.StatusOK, summaries)
}

// GetSpeciesDetail returns one species with its occurrences.
func (c *Controller) GetSpeciesDetail(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid species id", http.StatusBadRequest)
	}

	sp, err := c.DS.GetSpecies(id)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "Species not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to get species", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, sp)
}

// GetSpeciesBio runs the enrichment pipeline for one species and returns
// the combined bio view. Empty local fields are backfilled as a side
// effect.
func (c *Controller) GetSpeciesBio(ctx echo.Context) error {
	if c.Enrichment == nil {
		return c.HandleError(ctx, nil, "Enrichment is not enabled", http.StatusServiceUnavailable)
	}

	id, err := parseIDParam(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid species id", http.StatusBadRequest)
	}

	sp, err := c.DS.GetSpecies(id)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "Species not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to get species", http.StatusInternalServerError)
	}

	bio, err := c.Enrichment.EnrichAndBackfill(ctx.Request().Context(), sp)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to persist enrichment", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, bio)
}

// GetSpeciesImages returns the photo URL for a species: the stored URL
// when present, otherwise whatever the enrichment pipeline can find.
func (c *Controller) GetSpeciesImages(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid species id", http.StatusBadRequest)
	}

	sp, err := c.DS.GetSpecies(id)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "Species not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to get species", http.StatusInternalServerError)
	}

	photoURL := sp.PhotoURL
	if (photoURL == nil || *photoURL == "") && c.Enrichment != nil {
		bio, err := c.Enrichment.EnrichAndBackfill(ctx.Request().Context(), sp)
		if err == nil {
			photoURL = bio.PhotoURL
		}
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"species_id": sp.ID,
		"photo_url":  photoURL,
	})
}

// GetSpeciesOccurrences returns occurrences for one species, filtered by
// year window and source.
func (c *Controller) GetSpeciesOccurrences(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid species id", http.StatusBadRequest)
	}

	if _, err := c.DS.GetSpecies(id); err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "Species not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to get species", http.StatusInternalServerError)
	}

	fromYear, err := parseIntQuery(ctx, "from_year")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid from_year parameter", http.StatusBadRequest)
	}
	toYear, err := parseIntQuery(ctx, "to_year")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid to_year parameter", http.StatusBadRequest)
	}

	occurrences, err := c.DS.GetOccurrences(id, &datastore.OccurrenceFilters{
		FromYear: fromYear,
		ToYear:   toYear,
		Source:   ctx.QueryParam("source"),
	})
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get occurrences", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, occurrences)
}
