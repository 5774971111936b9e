// Package listing defines the relational listing aggregate and the uniform
// search result shape shared by both query paths.
package listing

import (
	"fmt"

	"github.com/google/uuid"
)

// Age bounds accepted for a listing.
const (
	MinAllowedAge = 0
	MaxAllowedAge = 120
)

// Status of a listing in the catalog.
type Status string

// Listing statuses.
const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Weekday bits for Schedule.Workdays, Monday first.
const (
	Monday byte = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday

	AllWeekdays = Monday | Tuesday | Wednesday | Thursday | Friday | Saturday | Sunday
)

// Schedule is one recurring availability window: a set of weekdays and an
// inclusive hour range on each of them.
type Schedule struct {
	Workdays  byte `json:"workdays"`
	StartHour int  `json:"start_hour"`
	EndHour   int  `json:"end_hour"`
}

// Valid reports whether the schedule entry is well-formed.
func (s Schedule) Valid() bool {
	return s.Workdays != 0 && s.Workdays <= AllWeekdays &&
		s.StartHour >= 0 && s.EndHour <= 23 && s.StartHour <= s.EndHour
}

// Section is one named block of descriptive text.
type Section struct {
	Name string
	Text string
}

// Address locates a listing.
type Address struct {
	Street       string
	City         string
	SettlementID int64
	Latitude     float64
	Longitude    float64
}

// Listing is the relational source-of-truth aggregate.
type Listing struct {
	ID            uuid.UUID
	Title         string
	ProviderTitle string
	Keywords      []string
	Sections      []Section
	Status        Status
	Deleted       bool
	Address       Address
	Schedules     []Schedule
	MinAge        int
	MaxAge        int
	Price         int64
	DirectionIDs  []int64
	Rating        float64
	Seq           uint64
}

// Free reports whether the listing costs nothing.
func (l *Listing) Free() bool { return l.Price == 0 }

// Indexable reports whether the listing may appear in index query results.
// Soft-deleted and closed listings never do.
func (l *Listing) Indexable() bool {
	return l.Status == StatusOpen && !l.Deleted
}

// Validate checks aggregate invariants.
func (l *Listing) Validate() error {
	if l.ID == uuid.Nil {
		return fmt.Errorf("listing id is required")
	}
	if l.Title == "" {
		return fmt.Errorf("listing %s: title is required", l.ID)
	}
	if l.MinAge < MinAllowedAge || l.MaxAge > MaxAllowedAge || l.MinAge > l.MaxAge {
		return fmt.Errorf("listing %s: age range [%d, %d] is invalid", l.ID, l.MinAge, l.MaxAge)
	}
	if l.Price < 0 {
		return fmt.Errorf("listing %s: price must be non-negative", l.ID)
	}
	for i, s := range l.Schedules {
		if !s.Valid() {
			return fmt.Errorf("listing %s: schedule entry %d is invalid", l.ID, i)
		}
	}
	return nil
}

// Card is the uniform result item both query paths produce.
type Card struct {
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

// SearchResult is the shape returned by every search path.
type SearchResult struct {
	TotalCount int    `json:"total_count"`
	Items      []Card `json:"items"`
}

// ToCard projects a listing into the shared result shape.
func (l *Listing) ToCard() Card {
	return Card{
		ID:            l.ID,
		Title:         l.Title,
		ProviderTitle: l.ProviderTitle,
		Rating:        l.Rating,
		Price:         l.Price,
		MinAge:        l.MinAge,
		MaxAge:        l.MaxAge,
		DirectionIDs:  append([]int64(nil), l.DirectionIDs...),
		City:          l.Address.City,
		Latitude:      l.Address.Latitude,
		Longitude:     l.Address.Longitude,
	}
}
