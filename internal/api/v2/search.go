package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SearchSpecies returns species whose name contains the query, for
// autocomplete use.
func (c *Controller) SearchSpecies(ctx echo.Context) error {
	query := strings.TrimSpace(ctx.QueryParam("q"))
	if query == "" {
		return c.HandleError(ctx, nil, "Missing query parameter 'q'", http.StatusBadRequest)
	}

	limit, offset := parseLimitOffset(ctx)

	list, err := c.DS.SearchSpecies(query, limit, offset)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to search species", http.StatusInternalServerError)
	}

	summaries := make([]SpeciesSummary, 0, len(list))
	for i := range list {
		summaries = append(summaries, toSummary(&list[i]))
	}

	return ctx.JSON(http.StatusOK, summaries)
}
