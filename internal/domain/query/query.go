// Package query holds the backend-neutral query descriptors the filter
// translator produces. The index repository renders an IndexQuery into a
// full-text search command; the postgres repository renders a Predicate into
// SQL. Both carry the same semantics so either path returns the same ids.
package query

import (
	"github.com/listdex/listdex/internal/domain/filter"
	"github.com/listdex/listdex/internal/domain/listing"
)

// Condition is one conjunctive clause of an IndexQuery.
type Condition interface {
	condition()
}

// TagSet matches documents whose Field holds any of Values.
type TagSet struct {
	Field  string
	Values []string
}

// NumericRange matches documents whose Field lies in the inclusive
// [Min, Max] interval. A nil bound is unrestricted.
type NumericRange struct {
	Field string
	Min   *float64
	Max   *float64
}

// GeoRadius matches documents whose Field point lies within KM kilometers of
// the center.
type GeoRadius struct {
	Field string
	Lat   float64
	Lon   float64
	KM    float64
}

// AgeOverlap matches documents whose [min_age, max_age] interval intersects
// any of the requested ranges.
type AgeOverlap struct {
	Ranges []filter.AgeRange
}

// SlotSet matches documents carrying any of the weekday/hour slot tokens.
type SlotSet struct {
	Field string
	Slots []string
}

func (TagSet) condition()       {}
func (NumericRange) condition() {}
func (GeoRadius) condition()    {}
func (AgeOverlap) condition()   {}
func (SlotSet) condition()      {}

// Sort is the requested result ordering. An empty Field means order by id.
type Sort struct {
	Field string
	Desc  bool
}

// IndexQuery is the index-path descriptor: a free-text term plus a
// conjunctive condition list, ordering and paging.
type IndexQuery struct {
	Text       string
	Conditions []Condition
	Sort       Sort
	From       int
	Size       int

	// MatchNone short-circuits rendering when the filter can never match
	// (e.g. it asks only for statuses that are never indexed).
	MatchNone bool
}

// Predicate is the relational-path descriptor. The postgres repository
// renders it to SQL; schedule matching becomes an EXISTS over schedule rows.
type Predicate struct {
	Text         string
	City         string
	SettlementID int64
	DirectionIDs []int64
	AgeRanges    []filter.AgeRange
	FreeOnly     bool
	MinPrice     *int64
	MaxPrice     *int64
	Geo          *GeoRadius
	Workdays     byte
	MinHour      int
	MaxHour      int
	HourWindow   bool
	OrderBy      filter.OrderBy
	From         int
	Size         int

	MatchNone bool
}

// openOnly reports whether the requested statuses still admit open listings.
// Closed and soft-deleted listings never appear in results on either path, so
// a status filter can only narrow down to "open" or to nothing at all.
func openOnly(statuses []listing.Status) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == listing.StatusOpen {
			return true
		}
	}
	return false
}
