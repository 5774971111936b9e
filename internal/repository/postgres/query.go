package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mmcloughlin/geohash"

	"github.com/listdex/listdex/internal/domain/collate"
	"github.com/listdex/listdex/internal/domain/document"
	"github.com/listdex/listdex/internal/domain/filter"
	"github.com/listdex/listdex/internal/domain/geo"
	"github.com/listdex/listdex/internal/domain/listing"
	"github.com/listdex/listdex/internal/domain/query"
)

// defaultPageSize bounds result pages when the caller does not.
const defaultPageSize = 30

// maxScanRows is the default candidate cap for orderings resolved in Go
// (nearest, alphabet) and for exact radius filtering; WithScanLimit tunes it.
const maxScanRows = 2000

const cardColumns = `
	l.id, l.title, l.provider_title, l.rating, l.price,
	l.min_age, l.max_age, l.direction_ids, l.city, l.latitude, l.longitude`

// Search executes a relational Predicate and returns the uniform result
// shape. Orderings the database cannot reproduce exactly (geo distance,
// locale collation) and exact radius filtering are resolved in Go over a
// bounded candidate set.
func (r *Repo) Search(ctx context.Context, p *query.Predicate) (*listing.SearchResult, error) {
	if p.MatchNone {
		return &listing.SearchResult{Items: []listing.Card{}}, nil
	}

	size := p.Size
	if size <= 0 {
		size = defaultPageSize
	}

	where, args := buildWhere(p)

	if resolvedInGo(p) {
		return r.searchScan(ctx, p, where, args, size)
	}

	var total int
	countSQL := "SELECT count(*) FROM listings l WHERE " + where
	if err := r.q.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}

	pageSQL := fmt.Sprintf(
		"SELECT %s FROM listings l WHERE %s ORDER BY %s LIMIT %d OFFSET %d",
		cardColumns, where, orderClause(p.OrderBy), size, p.From,
	)
	cards, err := r.queryCards(ctx, pageSQL, args)
	if err != nil {
		return nil, err
	}
	return &listing.SearchResult{TotalCount: total, Items: cards}, nil
}

// searchScan fetches a bounded candidate set and finishes filtering and
// ordering in Go.
func (r *Repo) searchScan(
	ctx context.Context, p *query.Predicate, where string, args []any, size int,
) (*listing.SearchResult, error) {
	scanSQL := fmt.Sprintf(
		"SELECT %s FROM listings l WHERE %s ORDER BY l.id LIMIT %d",
		cardColumns, where, r.scanLimit,
	)
	cards, err := r.queryCards(ctx, scanSQL, args)
	if err != nil {
		return nil, err
	}

	if p.Geo != nil && p.Geo.KM > 0 {
		kept := cards[:0]
		for _, c := range cards {
			if geo.Haversine(p.Geo.Lat, p.Geo.Lon, c.Latitude, c.Longitude) <= p.Geo.KM {
				kept = append(kept, c)
			}
		}
		cards = kept
	}

	sortCards(cards, p)

	total := len(cards)
	from := p.From
	if from > total {
		from = total
	}
	end := from + size
	if end > total {
		end = total
	}
	return &listing.SearchResult{TotalCount: total, Items: cards[from:end]}, nil
}

func (r *Repo) queryCards(ctx context.Context, sql string, args []any) ([]listing.Card, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	cards := make([]listing.Card, 0)
	for rows.Next() {
		var c listing.Card
		if err := rows.Scan(
			&c.ID, &c.Title, &c.ProviderTitle, &c.Rating, &c.Price,
			&c.MinAge, &c.MaxAge, &c.DirectionIDs, &c.City, &c.Latitude, &c.Longitude,
		); err != nil {
			return nil, fmt.Errorf("scan listing card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	return cards, nil
}

// resolvedInGo reports whether ordering or exact filtering must finish in Go.
func resolvedInGo(p *query.Predicate) bool {
	return p.OrderBy == filter.OrderByNearest ||
		p.OrderBy == filter.OrderByAlphabet ||
		(p.Geo != nil && p.Geo.KM > 0)
}

// buildWhere renders the predicate as a conjunctive WHERE clause. Both query
// paths constrain to open, non-deleted listings.
func buildWhere(p *query.Predicate) (string, []any) {
	clauses := []string{"l.status = 'open'", "NOT l.deleted"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.City != "" {
		clauses = append(clauses, "l.city = "+arg(p.City))
	}
	if p.SettlementID != 0 {
		clauses = append(clauses, "l.settlement_id = "+arg(p.SettlementID))
	}
	if len(p.DirectionIDs) > 0 {
		clauses = append(clauses, "l.direction_ids && "+arg(p.DirectionIDs))
	}
	if len(p.AgeRanges) > 0 {
		groups := make([]string, len(p.AgeRanges))
		for i, ar := range p.AgeRanges {
			groups[i] = fmt.Sprintf("(l.min_age <= %s AND l.max_age >= %s)", arg(ar.Max), arg(ar.Min))
		}
		clauses = append(clauses, "("+strings.Join(groups, " OR ")+")")
	}
	switch {
	case p.FreeOnly:
		clauses = append(clauses, "l.price = 0")
	default:
		if p.MinPrice != nil {
			clauses = append(clauses, "l.price >= "+arg(*p.MinPrice))
		}
		if p.MaxPrice != nil {
			clauses = append(clauses, "l.price <= "+arg(*p.MaxPrice))
		}
	}
	if p.Text != "" {
		// Must cover the same text the index's search_text field carries:
		// title, provider, keywords and the descriptive sections.
		pat := arg("%" + p.Text + "%")
		clauses = append(clauses, fmt.Sprintf(
			"(l.title ILIKE %[1]s OR l.provider_title ILIKE %[1]s OR array_to_string(l.keywords, ' ') ILIKE %[1]s"+
				" OR EXISTS (SELECT 1 FROM listing_sections d WHERE d.listing_id = l.id"+
				" AND (d.name ILIKE %[1]s OR d.text ILIKE %[1]s)))",
			pat,
		))
	}
	if p.HourWindow {
		mask := p.Workdays
		if mask == 0 {
			mask = listing.AllWeekdays
		}
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM listing_schedules s WHERE s.listing_id = l.id"+
				" AND (s.workdays & %s) <> 0 AND s.start_hour <= %s AND s.end_hour >= %s)",
			arg(int16(mask)), arg(p.MaxHour), arg(p.MinHour),
		))
	}
	if p.Geo != nil && p.Geo.KM > 0 {
		minLat, maxLat, minLon, maxLon := geo.BoundingBox(p.Geo.Lat, p.Geo.Lon, p.Geo.KM)
		clauses = append(clauses,
			fmt.Sprintf("l.latitude BETWEEN %s AND %s", arg(minLat), arg(maxLat)))
		if minLon <= maxLon {
			clauses = append(clauses,
				fmt.Sprintf("l.longitude BETWEEN %s AND %s", arg(minLon), arg(maxLon)))
		}
	}
	if p.OrderBy == filter.OrderByNearest && p.Geo != nil {
		if cells := nearCells(p.Geo.Lat, p.Geo.Lon, p.Geo.KM); len(cells) > 0 {
			clauses = append(clauses, fmt.Sprintf(
				"left(l.geocell, %d) = ANY(%s)", len(cells[0]), arg(cells)))
		}
	}

	return strings.Join(clauses, " AND "), args
}

// nearCells returns the geohash cell of the center plus its ring of
// neighbors: the candidate buckets for nearest ordering. The cell length
// scales with the radius so the 3x3 ring always covers it; geohash cells
// nest, so shorter cells match stored geocells by prefix. Empty means no
// cell ring can cover the radius and the bounding box alone must bound the
// candidates.
func nearCells(lat, lon, radiusKM float64) []string {
	p := cellPrecision(radiusKM)
	if p == 0 {
		return nil
	}
	center := geohash.EncodeWithPrecision(lat, lon, p)
	return append(geohash.Neighbors(center), center)
}

// cellPrecision picks the geohash length whose neighbor ring is guaranteed
// to cover the radius. Worst case the center sits at a cell edge, so the
// guaranteed coverage is one cell min-dimension: ~4.9km at length 5, ~19.5km
// at 4, ~156km at 3, ~625km at 2.
func cellPrecision(radiusKM float64) uint {
	switch {
	case radiusKM <= 4.8:
		return document.GeocellPrecision
	case radiusKM <= 19:
		return 4
	case radiusKM <= 150:
		return 3
	case radiusKM <= 600:
		return 2
	default:
		return 0
	}
}

// orderClause renders ordering with an id tie-break. The tie-break direction
// follows the sort direction, matching the index path's composite sort keys.
func orderClause(o filter.OrderBy) string {
	switch o {
	case filter.OrderByRating:
		return "l.rating DESC, l.id DESC"
	case filter.OrderByPriceAsc:
		return "l.price ASC, l.id"
	case filter.OrderByPriceDesc:
		return "l.price DESC, l.id DESC"
	default:
		return "l.id"
	}
}

// sortCards orders an in-Go result set the way the predicate asks. Ties
// break on id in the sort's direction, like orderClause and the index path's
// composite sort keys.
func sortCards(cards []listing.Card, p *query.Predicate) {
	less := func(a, b *listing.Card) bool { return a.ID.String() < b.ID.String() }

	switch p.OrderBy {
	case filter.OrderByNearest:
		if p.Geo != nil {
			g := p.Geo
			less = func(a, b *listing.Card) bool {
				da := geo.Haversine(g.Lat, g.Lon, a.Latitude, a.Longitude)
				db := geo.Haversine(g.Lat, g.Lon, b.Latitude, b.Longitude)
				if da != db {
					return da < db
				}
				return a.ID.String() < b.ID.String()
			}
		}
	case filter.OrderByAlphabet:
		less = func(a, b *listing.Card) bool {
			if a.Title != b.Title {
				return collate.Less(a.Title, b.Title)
			}
			return a.ID.String() < b.ID.String()
		}
	case filter.OrderByRating:
		less = func(a, b *listing.Card) bool {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.ID.String() > b.ID.String()
		}
	case filter.OrderByPriceAsc:
		less = func(a, b *listing.Card) bool {
			if a.Price != b.Price {
				return a.Price < b.Price
			}
			return a.ID.String() < b.ID.String()
		}
	case filter.OrderByPriceDesc:
		less = func(a, b *listing.Card) bool {
			if a.Price != b.Price {
				return a.Price > b.Price
			}
			return a.ID.String() > b.ID.String()
		}
	}

	sort.SliceStable(cards, func(i, j int) bool { return less(&cards[i], &cards[j]) })
}
