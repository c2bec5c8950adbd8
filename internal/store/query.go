package store

import (
	"context"
	"strings"

	"github.com/ihirwe/event-locator/internal/domain"
)

// CoordinateResolver is the forward geocoder the query builder uses to turn
// a search pattern into a proximity center. It never fails.
type CoordinateResolver interface {
	Resolve(ctx context.Context, locationText string) domain.Coordinate
}

// SearchRequest is a user-facing search: a text pattern on one field,
// optionally constrained by radius and categories.
type SearchRequest struct {
	Field      TextField
	Pattern    string
	RadiusKm   float64
	Categories []string
}

// QueryBuilder turns search requests into store filters.
type QueryBuilder struct {
	resolver CoordinateResolver
}

// NewQueryBuilder creates a builder resolving proximity centers through the
// given geocoder.
func NewQueryBuilder(resolver CoordinateResolver) *QueryBuilder {
	return &QueryBuilder{resolver: resolver}
}

// Build constructs the conjunctive filter. A radius of 0 or less means no
// distance constraint, so the geocoder is only consulted for a positive
// radius.
func (b *QueryBuilder) Build(ctx context.Context, req SearchRequest) Filter {
	f := Filter{
		Text: &TextMatch{Field: req.Field, Pattern: req.Pattern},
	}

	if req.RadiusKm > 0 {
		center := b.resolver.Resolve(ctx, req.Pattern)
		f.Near = &Proximity{Center: center, MaxMeters: req.RadiusKm * 1000}
	}

	for _, c := range req.Categories {
		if c = strings.TrimSpace(c); c != "" {
			f.Categories = append(f.Categories, strings.ToLower(c))
		}
	}

	return f
}
