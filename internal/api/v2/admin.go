package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecoatlas/ecoatlas-go/internal/species"
)

// checkAdminToken validates the static admin token from the query string.
func (c *Controller) checkAdminToken(ctx echo.Context) bool {
	configured := c.Settings.Security.AdminToken
	if configured == "" {
		return false
	}
	provided := ctx.QueryParam("token")
	return subtle.ConstantTimeCompare([]byte(configured), []byte(provided)) == 1
}

// ReloadSpeciesData wipes and reloads the species catalog from the seed
// file. Guarded by the admin token.
func (c *Controller) ReloadSpeciesData(ctx echo.Context) error {
	if !c.checkAdminToken(ctx) {
		return c.HandleError(ctx, nil, "Invalid admin token", http.StatusUnauthorized)
	}

	created, err := species.Reload(c.DS, c.Settings.Species.SeedFile)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to reload species data", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"status":  "reloaded",
		"created": created,
	})
}

// ImportFromGBIF triggers a GBIF import run. Guarded by the admin token.
func (c *Controller) ImportFromGBIF(ctx echo.Context) error {
	if !c.checkAdminToken(ctx) {
		return c.HandleError(ctx, nil, "Invalid admin token", http.StatusUnauthorized)
	}
	if c.Importer == nil {
		return c.HandleError(ctx, nil, "GBIF import is not enabled", http.StatusServiceUnavailable)
	}

	stats, err := c.Importer.Run(ctx.Request().Context(),
		c.Settings.GBIF.SpeciesLimit, c.Settings.GBIF.OccurrenceLimit)
	if err != nil {
		return c.HandleError(ctx, err, "GBIF import failed", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"status":           "imported",
		"species_created":  stats.SpeciesCreated,
		"species_skipped":  stats.SpeciesSkipped,
		"occurrence_count": stats.OccurrenceCount,
		"failures":         stats.Failures,
	})
}
