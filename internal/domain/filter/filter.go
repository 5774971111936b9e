// Package filter defines the domain search filter and its validation.
//
// A zero-value filter is unrestricted. Validation happens once, at the query
// boundary; translated queries never reach a backend with malformed input.
package filter

import (
	"fmt"
	"math"

	"github.com/listdex/listdex/internal/domain/geo"
	"github.com/listdex/listdex/internal/domain/listing"
)

// OrderBy selects result ordering.
type OrderBy string

// Ordering keys.
const (
	OrderByID        OrderBy = "id"
	OrderByRating    OrderBy = "rating"
	OrderByPriceAsc  OrderBy = "price_asc"
	OrderByPriceDesc OrderBy = "price_desc"
	OrderByAlphabet  OrderBy = "alphabet"
	OrderByNearest   OrderBy = "nearest"
)

// Hour window defaults: the full day.
const (
	MinHourDefault = 0
	MaxHourDefault = 23
)

// AgeRange is one requested [Min, Max] age interval. A listing matches when
// the intervals intersect.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Overlaps reports whether the requested range intersects [minAge, maxAge].
func (r AgeRange) Overlaps(minAge, maxAge int) bool {
	return r.Min <= maxAge && r.Max >= minAge
}

// Radius is a geo-radius restriction around a center point, in kilometers.
type Radius struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	KM  float64 `json:"km"`
}

// Filter is the rich domain search filter. Zero values mean "unrestricted".
type Filter struct {
	Text         string
	AgeRanges    []AgeRange
	MinPrice     int64
	MaxPrice     int64 // 0 = unbounded
	IsFree       bool
	Radius       *Radius
	Workdays     byte
	MinHour      int
	MaxHour      int
	OrderBy      OrderBy
	From         int
	Size         int
	DirectionIDs []int64
	City         string
	SettlementID int64
	Statuses     []listing.Status
}

// New returns a filter with default hour window and ordering applied.
func New() Filter {
	return Filter{MinHour: MinHourDefault, MaxHour: MaxHourDefault, OrderBy: OrderByID}
}

// HasHourWindow reports whether the hour window restricts anything. An
// all-zero window means "unset", so a zero-value Filter stays unrestricted;
// a midnight-only window is not expressible.
func (f *Filter) HasHourWindow() bool {
	if f.MinHour == 0 && f.MaxHour == 0 {
		return false
	}
	return f.MinHour > MinHourDefault || f.MaxHour < MaxHourDefault
}

// HourBounds returns the effective hour window, mapping the unset zero
// window to the full day.
func (f *Filter) HourBounds() (min, max int) {
	if f.MinHour == 0 && f.MaxHour == 0 {
		return MinHourDefault, MaxHourDefault
	}
	return f.MinHour, f.MaxHour
}

// HasPriceBounds reports whether explicit price bounds are set.
func (f *Filter) HasPriceBounds() bool {
	return f.MinPrice > 0 || f.MaxPrice > 0
}

// Validate rejects malformed filters before they reach either backend.
func (f *Filter) Validate() error {
	for _, r := range f.AgeRanges {
		if r.Min < listing.MinAllowedAge || r.Max > listing.MaxAllowedAge {
			return fmt.Errorf("age range [%d, %d] outside [%d, %d]",
				r.Min, r.Max, listing.MinAllowedAge, listing.MaxAllowedAge)
		}
		if r.Min > r.Max {
			return fmt.Errorf("age range [%d, %d] is inverted", r.Min, r.Max)
		}
	}
	if f.MinPrice < 0 || f.MaxPrice < 0 {
		return fmt.Errorf("price bounds must be non-negative")
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return fmt.Errorf("price range [%d, %d] is inverted", f.MinPrice, f.MaxPrice)
	}
	if f.Radius != nil {
		if f.Radius.KM < 0 || math.IsNaN(f.Radius.KM) {
			return fmt.Errorf("radius must be non-negative")
		}
		if !geo.ValidateCoordinates(f.Radius.Lat, f.Radius.Lon) {
			return fmt.Errorf("radius center (%f, %f) is out of range", f.Radius.Lat, f.Radius.Lon)
		}
	}
	if f.Workdays > listing.AllWeekdays {
		return fmt.Errorf("workdays bitmask %08b has unknown bits", f.Workdays)
	}
	if f.MinHour < MinHourDefault || f.MaxHour > MaxHourDefault || f.MinHour > f.MaxHour {
		return fmt.Errorf("hour window [%d, %d] is invalid", f.MinHour, f.MaxHour)
	}
	if f.From < 0 || f.Size < 0 {
		return fmt.Errorf("paging must be non-negative")
	}
	for _, s := range f.Statuses {
		if s != listing.StatusOpen && s != listing.StatusClosed {
			return fmt.Errorf("unknown status %q", s)
		}
	}
	switch f.OrderBy {
	case "", OrderByID, OrderByRating, OrderByPriceAsc, OrderByPriceDesc, OrderByAlphabet:
	case OrderByNearest:
		if f.Radius == nil {
			return fmt.Errorf("nearest ordering requires a geo center")
		}
	default:
		return fmt.Errorf("unknown ordering %q", f.OrderBy)
	}
	return nil
}
