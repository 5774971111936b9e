// Package search implements the index-path query service: it renders query
// descriptors to FT.SEARCH commands and parses hash documents back into the
// uniform result shape.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/listdex/listdex/internal/db"
	"github.com/listdex/listdex/internal/domain/document"
	"github.com/listdex/listdex/internal/domain/geo"
	"github.com/listdex/listdex/internal/domain/listing"
	"github.com/listdex/listdex/internal/domain/query"
	"github.com/listdex/listdex/internal/repository/index"
)

// DefaultPageSize bounds result pages when the caller does not.
const DefaultPageSize = 30

// distanceSlackKM absorbs floating-point drift at the radius boundary: a
// point exactly at the radius is in, a point meaningfully beyond is out.
const distanceSlackKM = 1e-6

// store is the consumer interface for index-path queries (ISP).
type store interface {
	Search(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// Repo implements usecase/query.IndexSearcher.
type Repo struct {
	store store
}

// New creates an index-path query repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search executes an IndexQuery against the FT index and returns the uniform
// result shape. Radius queries get an exact Haversine post-check so the two
// query paths agree at the boundary.
func (r *Repo) Search(ctx context.Context, q *query.IndexQuery) (*listing.SearchResult, error) {
	if q.MatchNone {
		return &listing.SearchResult{Items: []listing.Card{}}, nil
	}

	limit := q.Size
	if limit <= 0 {
		limit = DefaultPageSize
	}

	sr, err := r.store.Search(ctx, &db.ListQuery{
		Index:    index.IndexName,
		Query:    Render(q),
		SortBy:   q.Sort.Field,
		SortDesc: q.Sort.Desc,
		Offset:   q.From,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	out := &listing.SearchResult{
		TotalCount: sr.Total,
		Items:      make([]listing.Card, 0, len(sr.Entries)),
	}
	for _, entry := range sr.Entries {
		card, err := parseCard(entry)
		if err != nil {
			// A single unparsable document must not fail the page.
			continue
		}
		if radius := geoRadiusOf(q); radius != nil {
			d := geo.Haversine(radius.Lat, radius.Lon, card.Latitude, card.Longitude)
			if d > radius.KM+distanceSlackKM {
				out.TotalCount--
				continue
			}
		}
		out.Items = append(out.Items, card)
	}
	return out, nil
}

func geoRadiusOf(q *query.IndexQuery) *query.GeoRadius {
	for _, cond := range q.Conditions {
		if g, ok := cond.(query.GeoRadius); ok {
			return &g
		}
	}
	return nil
}

// parseCard reconstructs a result card from flat hash fields.
func parseCard(entry db.SearchEntry) (listing.Card, error) {
	f := entry.Fields

	id, err := uuid.Parse(f[document.FieldID])
	if err != nil {
		return listing.Card{}, fmt.Errorf("document %s: bad id: %w", entry.Key, err)
	}

	card := listing.Card{
		ID:            id,
		Title:         f[document.FieldTitle],
		ProviderTitle: f[document.FieldProviderTitle],
		City:          f[document.FieldCity],
	}
	card.Rating, _ = strconv.ParseFloat(f[document.FieldRating], 64)
	card.Price, _ = strconv.ParseInt(f[document.FieldPrice], 10, 64)
	card.MinAge, _ = strconv.Atoi(f[document.FieldMinAge])
	card.MaxAge, _ = strconv.Atoi(f[document.FieldMaxAge])

	if dirs := f[document.FieldDirections]; dirs != "" {
		for _, p := range strings.Split(dirs, ",") {
			v, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				continue
			}
			card.DirectionIDs = append(card.DirectionIDs, v)
		}
	}

	if pt := f[document.FieldGeo]; pt != "" {
		// stored as "lon,lat"
		if lon, lat, ok := strings.Cut(pt, ","); ok {
			card.Longitude, _ = strconv.ParseFloat(lon, 64)
			card.Latitude, _ = strconv.ParseFloat(lat, 64)
		}
	}

	return card, nil
}
