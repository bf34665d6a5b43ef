package gbif

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedClient(t *testing.T) *Client {
	t.Helper()

	client := NewClient(Config{
		Timeout:   2 * time.Second,
		CacheTTL:  time.Minute,
		RateLimit: time.Millisecond,
	})
	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func TestSearchSpecies(t *testing.T) {
	client := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, `=~^https://api\.gbif\.org/v1/species/search`,
		httpmock.NewStringResponder(http.StatusOK,
			`{"count":2,"results":[{"key":5219404,"scientificName":"Panthera leo (Linnaeus, 1758)","vernacularName":"Lion"},{"key":2435099,"scientificName":"Puma concolor (Linnaeus, 1771)"}]}`))

	results, err := client.SearchSpecies(context.Background(), KingdomAnimalia, 2, 0)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(5219404), results[0].Key)
	assert.Equal(t, "Lion", results[0].VernacularName)
	assert.Empty(t, results[1].VernacularName)
}

func TestSearchSpeciesMemoization(t *testing.T) {
	client := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, `=~^https://api\.gbif\.org/v1/species/search`,
		httpmock.NewStringResponder(http.StatusOK, `{"count":0,"results":[]}`))

	_, err := client.SearchSpecies(context.Background(), KingdomAnimalia, 10, 0)
	require.NoError(t, err)
	_, err = client.SearchSpecies(context.Background(), KingdomAnimalia, 10, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSearchOccurrences(t *testing.T) {
	client := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, `=~^https://api\.gbif\.org/v1/occurrence/search`,
		httpmock.NewStringResponder(http.StatusOK,
			`{"count":1,"results":[{"key":1,"decimalLatitude":-2.3,"decimalLongitude":34.8,"year":2019,"country":"Tanzania"}]}`))

	results, err := client.SearchOccurrences(context.Background(), 5219404, 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].DecimalLatitude)
	assert.InDelta(t, -2.3, *results[0].DecimalLatitude, 0.001)
	require.NotNil(t, results[0].Year)
	assert.Equal(t, 2019, *results[0].Year)
}

func TestSearchSpeciesServerError(t *testing.T) {
	client := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, `=~^https://api\.gbif\.org/v1/species/search`,
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"error":"boom"}`))

	results, err := client.SearchSpecies(context.Background(), KingdomAnimalia, 10, 0)

	require.Error(t, err)
	assert.Nil(t, results)
}

func TestSearchSpeciesMalformedBody(t *testing.T) {
	client := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, `=~^https://api\.gbif\.org/v1/species/search`,
		httpmock.NewStringResponder(http.StatusOK, `{not json`))

	results, err := client.SearchSpecies(context.Background(), KingdomAnimalia, 10, 0)

	require.Error(t, err)
	assert.Nil(t, results)
}
