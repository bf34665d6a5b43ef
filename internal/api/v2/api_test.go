package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoatlas/ecoatlas-go/internal/conf"
	"github.com/ecoatlas/ecoatlas-go/internal/datastore"
)

func newTestController(t *testing.T) (*Controller, *datastore.SQLiteStore) {
	t.Helper()

	settings := &conf.Settings{}
	settings.Database.SQLite.Enabled = true
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "test.db")
	settings.WebServer.Enabled = true
	settings.WebServer.Port = "8080"
	settings.Security.AdminToken = "test-admin-token"

	store := &datastore.SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		_ = store.Close()
	})

	e := echo.New()
	controller := New(e, store, settings, nil, nil)
	t.Cleanup(controller.Shutdown)

	return controller, store
}

func seedController(t *testing.T, store *datastore.SQLiteStore) (lion, eagle *datastore.Species) {
	t.Helper()

	lion = &datastore.Species{
		CommonName:     "Lion",
		ScientificName: "Panthera leo",
		LifeZone:       "terrestre",
		Biome:          "savane",
	}
	eagle = &datastore.Species{
		CommonName:     "Aigle royal",
		ScientificName: "Aquila chrysaetos",
		LifeZone:       "volant",
		Biome:          "montagne",
	}
	require.NoError(t, store.SaveSpecies(lion))
	require.NoError(t, store.SaveSpecies(eagle))
	return lion, eagle
}

func doRequest(c *Controller, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	controller, _ := newTestController(t)

	rec := doRequest(controller, http.MethodGet, "/api/v2/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["database"])
}

func TestGetSpeciesList(t *testing.T) {
	controller, store := newTestController(t)
	seedController(t, store)

	rec := doRequest(controller, http.MethodGet, "/api/v2/species")

	assert.Equal(t, http.StatusOK, rec.Code)
	var list []SpeciesSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Aquila chrysaetos", list[0].ScientificName)
}

func TestGetSpeciesListLifeZoneFilter(t *testing.T) {
	controller, store := newTestController(t)
	_, eagle := seedController(t, store)

	rec := doRequest(controller, http.MethodGet, "/api/v2/species?life_zone=volant")

	assert.Equal(t, http.StatusOK, rec.Code)
	var list []SpeciesSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, eagle.ID, list[0].ID)
}

func TestGetSpeciesListYearFilter(t *testing.T) {
	controller, store := newTestController(t)
	lion, _ := seedController(t, store)

	start, end := 1990, 2000
	require.NoError(t, store.SaveOccurrence(&datastore.Occurrence{
		SpeciesID: lion.ID, Lat: -2.3, Lng: 34.8, StartYear: &start, EndYear: &end,
	}))

	rec := doRequest(controller, http.MethodGet, "/api/v2/species?year=1995")
	assert.Equal(t, http.StatusOK, rec.Code)
	var list []SpeciesSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, lion.ID, list[0].ID)

	rec = doRequest(controller, http.MethodGet, "/api/v2/species?year=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSpeciesDetail(t *testing.T) {
	controller, store := newTestController(t)
	lion, _ := seedController(t, store)

	rec := doRequest(controller, http.MethodGet, "/api/v2/species/"+uintToString(lion.ID))

	assert.Equal(t, http.StatusOK, rec.Code)
	var sp datastore.Species
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sp))
	assert.Equal(t, "Panthera leo", sp.ScientificName)
}

func TestGetSpeciesDetailNotFound(t *testing.T) {
	controller, _ := newTestController(t)

	rec := doRequest(controller, http.MethodGet, "/api/v2/species/9999")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.CorrelationID, 8)
}

func TestGetSpeciesDetailInvalidID(t *testing.T) {
	controller, _ := newTestController(t)

	rec := doRequest(controller, http.MethodGet, "/api/v2/species/abc")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSpeciesBioUnavailableWithoutEnrichment(t *testing.T) {
	controller, store := newTestController(t)
	lion, _ := seedController(t, store)

	rec := doRequest(controller, http.MethodGet, "/api/v2/species/"+uintToString(lion.ID)+"/bio")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetSpeciesImagesStoredURL(t *testing.T) {
	controller, store := newTestController(t)
	lion, _ := seedController(t, store)

	stored := "https://upload.wikimedia.org/wikipedia/commons/d/dd/Panthera_leo.jpg"
	lion.PhotoURL = &stored
	require.NoError(t, store.UpdateSpecies(lion))

	rec := doRequest(controller, http.MethodGet, "/api/v2/species/"+uintToString(lion.ID)+"/images")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, stored, body["photo_url"])
}

func TestGetSpeciesOccurrences(t *testing.T) {
	controller, store := newTestController(t)
	lion, _ := seedController(t, store)

	start, end := 1990, 2000
	require.NoError(t, store.SaveOccurrences([]datastore.Occurrence{
		{SpeciesID: lion.ID, Lat: -2.3, Lng: 34.8, StartYear: &start, EndYear: &end, Source: datastore.SourceManual},
		{SpeciesID: lion.ID, Lat: -1.5, Lng: 35.2, Source: datastore.SourceGBIF},
	}))

	rec := doRequest(controller, http.MethodGet, "/api/v2/species/"+uintToString(lion.ID)+"/occurrences?source=GBIF")

	assert.Equal(t, http.StatusOK, rec.Code)
	var occs []datastore.Occurrence
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &occs))
	require.Len(t, occs, 1)
	assert.Equal(t, datastore.SourceGBIF, occs[0].Source)
}

func TestSearchSpecies(t *testing.T) {
	controller, store := newTestController(t)
	seedController(t, store)

	rec := doRequest(controller, http.MethodGet, "/api/v2/search/species?q=panthera")

	assert.Equal(t, http.StatusOK, rec.Code)
	var list []SpeciesSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Panthera leo", list[0].ScientificName)
}

func TestSearchSpeciesMissingQuery(t *testing.T) {
	controller, _ := newTestController(t)

	rec := doRequest(controller, http.MethodGet, "/api/v2/search/species")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminReload(t *testing.T) {
	controller, store := newTestController(t)
	seedController(t, store)

	seedPath := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seedPath, []byte(`[
		{"common_name":"Lion","scientific_name":"Panthera leo","biome":"savane","occurrences":[{"lat":-2.3,"lng":34.8}]}
	]`), 0o644))
	controller.Settings.Species.SeedFile = seedPath

	rec := doRequest(controller, http.MethodPost, "/api/v2/admin/reload?token=test-admin-token")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "reloaded", body["status"])
	assert.EqualValues(t, 1, body["created"])

	count, err := store.CountSpecies()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAdminReloadRejectsBadToken(t *testing.T) {
	controller, _ := newTestController(t)

	for _, target := range []string{
		"/api/v2/admin/reload",
		"/api/v2/admin/reload?token=wrong",
	} {
		rec := doRequest(controller, http.MethodPost, target)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "target %s", target)
	}
}

func TestAdminReloadRejectedWhenTokenUnconfigured(t *testing.T) {
	controller, _ := newTestController(t)
	controller.Settings.Security.AdminToken = ""

	rec := doRequest(controller, http.MethodPost, "/api/v2/admin/reload?token=")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminImportUnavailableWithoutImporter(t *testing.T) {
	controller, _ := newTestController(t)

	rec := doRequest(controller, http.MethodPost, "/api/v2/admin/import?token=test-admin-token")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
