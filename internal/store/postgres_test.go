package store

import (
	"testing"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/ihirwe/event-locator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderFilter(t *testing.T, f Filter) (string, []any) {
	t.Helper()
	ds := goqu.Dialect("postgres").From(eventsTable).Prepared(true)
	if exprs := filterExpressions(f); len(exprs) > 0 {
		ds = ds.Where(exprs...)
	}
	query, args, err := ds.ToSQL()
	require.NoError(t, err)
	return query, args
}

func TestFilterExpressions_Empty(t *testing.T) {
	query, args := renderFilter(t, Filter{})

	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func TestFilterExpressions_TextMatchUsesILike(t *testing.T) {
	query, args := renderFilter(t, Filter{
		Text: &TextMatch{Field: FieldCity, Pattern: "kig"},
	})

	assert.Contains(t, query, `"city" ILIKE`)
	assert.Contains(t, args, "%kig%")
}

func TestFilterExpressions_ProximityUsesEarthDistance(t *testing.T) {
	query, args := renderFilter(t, Filter{
		Near: &Proximity{
			Center:    domain.Coordinate{Lon: 30.0619, Lat: -1.9441},
			MaxMeters: 25000,
		},
	})

	assert.Contains(t, query, "earth_distance(ll_to_earth(latitude, longitude), ll_to_earth(")
	assert.Contains(t, args, -1.9441)
	assert.Contains(t, args, 30.0619)
	assert.Contains(t, args, 25000.0)
}

func TestFilterExpressions_UnenrichedIsNullCheck(t *testing.T) {
	query, _ := renderFilter(t, Filter{Unenriched: true})

	assert.Contains(t, query, `"enhanced_location" IS NULL`)
}

func TestFilterExpressions_CategoriesUseIn(t *testing.T) {
	query, args := renderFilter(t, Filter{Categories: []string{"music", "sports"}})

	assert.Contains(t, query, `"category" IN`)
	assert.Contains(t, args, "music")
	assert.Contains(t, args, "sports")
}

func TestFilterExpressions_Conjunction(t *testing.T) {
	query, _ := renderFilter(t, Filter{
		CreatorID:  "user-1",
		Text:       &TextMatch{Field: FieldCountry, Pattern: "Rwanda"},
		Categories: []string{"music"},
	})

	assert.Contains(t, query, `"creator_id"`)
	assert.Contains(t, query, "AND")
}
