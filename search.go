package listdex

import (
	"time"

	"github.com/google/uuid"

	"github.com/listdex/listdex/internal/domain/filter"
	"github.com/listdex/listdex/internal/domain/listing"
)

// Order selects result ordering for a Query.
type Order string

// Orderings. OrderNearest requires a Near restriction and always runs on the
// relational path.
const (
	OrderByID        Order = Order(filter.OrderByID)
	OrderByRating    Order = Order(filter.OrderByRating)
	OrderByPriceAsc  Order = Order(filter.OrderByPriceAsc)
	OrderByPriceDesc Order = Order(filter.OrderByPriceDesc)
	OrderByAlphabet  Order = Order(filter.OrderByAlphabet)
	OrderByNearest   Order = Order(filter.OrderByNearest)
)

// Query is a fluent search filter builder. The zero query matches every open
// listing; every method narrows it further.
type Query struct {
	filter filter.Filter
}

// NewQuery returns an unrestricted query with default hour window, ordering
// and paging.
func NewQuery() *Query {
	return &Query{filter: filter.New()}
}

// Text restricts results to listings matching the free-text terms.
func (q *Query) Text(text string) *Query {
	q.filter.Text = text
	return q
}

// City restricts results to one city.
func (q *Query) City(city string) *Query {
	q.filter.City = city
	return q
}

// Settlement restricts results to one settlement.
func (q *Query) Settlement(id int64) *Query {
	q.filter.SettlementID = id
	return q
}

// Directions restricts results to listings tagged with any of the given
// direction ids.
func (q *Query) Directions(ids ...int64) *Query {
	q.filter.DirectionIDs = append(q.filter.DirectionIDs, ids...)
	return q
}

// Ages adds a requested age interval. A listing matches when its own age
// range intersects any requested interval.
func (q *Query) Ages(min, max int) *Query {
	q.filter.AgeRanges = append(q.filter.AgeRanges, filter.AgeRange{Min: min, Max: max})
	return q
}

// Free restricts results to listings that cost nothing. Price bounds set via
// PriceBetween are ignored while this is on.
func (q *Query) Free() *Query {
	q.filter.IsFree = true
	return q
}

// PriceBetween restricts results by price. max = 0 means unbounded above.
func (q *Query) PriceBetween(min, max int64) *Query {
	q.filter.MinPrice = min
	q.filter.MaxPrice = max
	return q
}

// Near restricts results to a radius (in kilometers) around a center point.
func (q *Query) Near(lat, lon, km float64) *Query {
	q.filter.Radius = &filter.Radius{Lat: lat, Lon: lon, KM: km}
	return q
}

// Weekdays restricts results to listings with an availability window on any
// of the given weekdays.
func (q *Query) Weekdays(days ...time.Weekday) *Query {
	for _, d := range days {
		q.filter.Workdays |= weekdayBit(d)
	}
	return q
}

// Hours restricts results to listings whose availability window overlaps
// [min, max] hours of day.
func (q *Query) Hours(min, max int) *Query {
	q.filter.MinHour = min
	q.filter.MaxHour = max
	return q
}

// IncludeClosed widens the status restriction to closed listings too.
// Closed listings are only reachable through the relational path; the index
// reports an empty result for them.
func (q *Query) IncludeClosed() *Query {
	q.filter.Statuses = []listing.Status{listing.StatusOpen, listing.StatusClosed}
	return q
}

// OrderBy sets result ordering.
func (q *Query) OrderBy(o Order) *Query {
	q.filter.OrderBy = filter.OrderBy(o)
	return q
}

// Page sets result paging: skip from items, return up to size.
func (q *Query) Page(from, size int) *Query {
	q.filter.From = from
	q.filter.Size = size
	return q
}

func weekdayBit(d time.Weekday) byte {
	if d == time.Sunday {
		return listing.Sunday
	}
	return 1 << (int(d) - 1)
}

// Item is one search hit.
type Item struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	ProviderTitle string    `json:"provider_title"`
	Rating        float64   `json:"rating"`
	Price         int64     `json:"price"`
	MinAge        int       `json:"min_age"`
	MaxAge        int       `json:"max_age"`
	DirectionIDs  []int64   `json:"direction_ids,omitempty"`
	City          string    `json:"city"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
}

// Result is a page of search hits with the total match count.
type Result struct {
	TotalCount int    `json:"total_count"`
	Items      []Item `json:"items"`
}

// SyncResult reports one change-feed replay cycle.
type SyncResult struct {
	Applied        int    `json:"applied"`
	Skipped        int    `json:"skipped"`
	Failed         int    `json:"failed"`
	NextCheckpoint uint64 `json:"next_checkpoint"`
}

// ReindexResult reports a full index rebuild.
type ReindexResult struct {
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
	Pages   int `json:"pages"`
}
