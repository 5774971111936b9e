package query

import (
	"strconv"

	"github.com/listdex/listdex/internal/domain/document"
	"github.com/listdex/listdex/internal/domain/filter"
	"github.com/listdex/listdex/internal/domain/listing"
)

// ToIndexQuery translates a validated filter into the index-path descriptor.
// Nearest ordering never reaches the index path; the selector routes it to
// the relational path, so here it degrades to the id ordering.
func ToIndexQuery(f *filter.Filter) IndexQuery {
	q := IndexQuery{
		Text: f.Text,
		Sort: sortFor(f.OrderBy),
		From: f.From,
		Size: f.Size,
	}
	if !openOnly(f.Statuses) {
		q.MatchNone = true
		return q
	}

	q.Conditions = append(q.Conditions,
		TagSet{Field: document.FieldStatus, Values: []string{string(listing.StatusOpen)}})

	if f.City != "" {
		q.Conditions = append(q.Conditions,
			TagSet{Field: document.FieldCity, Values: []string{f.City}})
	}
	if f.SettlementID != 0 {
		q.Conditions = append(q.Conditions,
			TagSet{Field: document.FieldSettlement, Values: []string{strconv.FormatInt(f.SettlementID, 10)}})
	}
	if len(f.DirectionIDs) > 0 {
		vals := make([]string, len(f.DirectionIDs))
		for i, id := range f.DirectionIDs {
			vals[i] = strconv.FormatInt(id, 10)
		}
		q.Conditions = append(q.Conditions, TagSet{Field: document.FieldDirections, Values: vals})
	}
	if len(f.AgeRanges) > 0 {
		q.Conditions = append(q.Conditions, AgeOverlap{Ranges: append([]filter.AgeRange(nil), f.AgeRanges...)})
	}
	if pr := priceRange(f); pr != nil {
		q.Conditions = append(q.Conditions, *pr)
	}
	if f.Radius != nil && f.Radius.KM > 0 {
		q.Conditions = append(q.Conditions, GeoRadius{
			Field: document.FieldGeo,
			Lat:   f.Radius.Lat,
			Lon:   f.Radius.Lon,
			KM:    f.Radius.KM,
		})
	}
	if slots := scheduleSlots(f); len(slots) > 0 {
		q.Conditions = append(q.Conditions, SlotSet{Field: document.FieldSched, Slots: slots})
	}
	return q
}

// ToRelationalPredicate translates a validated filter into the relational
// descriptor. Semantics match ToIndexQuery clause for clause.
func ToRelationalPredicate(f *filter.Filter) Predicate {
	minHour, maxHour := f.HourBounds()
	p := Predicate{
		Text:         f.Text,
		City:         f.City,
		SettlementID: f.SettlementID,
		DirectionIDs: append([]int64(nil), f.DirectionIDs...),
		AgeRanges:    append([]filter.AgeRange(nil), f.AgeRanges...),
		FreeOnly:     f.IsFree,
		Workdays:     f.Workdays,
		MinHour:      minHour,
		MaxHour:      maxHour,
		HourWindow:   f.Workdays != 0 || f.HasHourWindow(),
		OrderBy:      f.OrderBy,
		From:         f.From,
		Size:         f.Size,
	}
	if !openOnly(f.Statuses) {
		p.MatchNone = true
		return p
	}
	if !f.IsFree {
		if f.MinPrice > 0 {
			v := f.MinPrice
			p.MinPrice = &v
		}
		if f.MaxPrice > 0 {
			v := f.MaxPrice
			p.MaxPrice = &v
		}
	}
	if f.Radius != nil {
		p.Geo = &GeoRadius{Field: document.FieldGeo, Lat: f.Radius.Lat, Lon: f.Radius.Lon, KM: f.Radius.KM}
	}
	return p
}

// priceRange maps the price clause. A free-only filter pins price to zero and
// ignores explicit bounds; otherwise bounds apply inclusively when set.
func priceRange(f *filter.Filter) *NumericRange {
	if f.IsFree {
		zero := 0.0
		return &NumericRange{Field: document.FieldPrice, Min: &zero, Max: &zero}
	}
	if !f.HasPriceBounds() {
		return nil
	}
	r := NumericRange{Field: document.FieldPrice}
	if f.MinPrice > 0 {
		v := float64(f.MinPrice)
		r.Min = &v
	}
	if f.MaxPrice > 0 {
		v := float64(f.MaxPrice)
		r.Max = &v
	}
	return &r
}

// scheduleSlots enumerates the weekday/hour slot tokens the filter admits.
// An unrestricted filter yields no clause. A weekday-only filter spans the
// full day; an hour-only filter spans all weekdays. Matching a token means a
// single schedule entry covers both the weekday and the hour, which is the
// relational EXISTS semantics.
func scheduleSlots(f *filter.Filter) []string {
	if f.Workdays == 0 && !f.HasHourWindow() {
		return nil
	}
	mask := f.Workdays
	if mask == 0 {
		mask = listing.AllWeekdays
	}
	minHour, maxHour := f.HourBounds()
	var slots []string
	for wd := 0; wd < 7; wd++ {
		if mask&(1<<wd) == 0 {
			continue
		}
		for h := minHour; h <= maxHour; h++ {
			slots = append(slots, document.SlotToken(wd, h))
		}
	}
	return slots
}

// sortFor picks the sortable field. Rating and price sorts go through the
// composite sort keys (value plus id suffix) so ties rank identically on both
// query paths.
func sortFor(o filter.OrderBy) Sort {
	switch o {
	case filter.OrderByRating:
		return Sort{Field: document.FieldRatingKey, Desc: true}
	case filter.OrderByPriceAsc:
		return Sort{Field: document.FieldPriceKey}
	case filter.OrderByPriceDesc:
		return Sort{Field: document.FieldPriceKey, Desc: true}
	case filter.OrderByAlphabet:
		return Sort{Field: document.FieldTitleKey}
	default:
		return Sort{Field: document.FieldID}
	}
}
