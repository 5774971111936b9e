// Package document maps relational listings into denormalized index documents.
//
// The mapping is pure: no I/O, no clocks. Everything the index needs to answer
// a filter is precomputed here so query translation stays flat.
package document

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"

	"github.com/listdex/listdex/internal/domain/collate"
	"github.com/listdex/listdex/internal/domain/geo"
	"github.com/listdex/listdex/internal/domain/listing"
)

// SectionSeparator joins descriptive text blocks in the search_text field.
// The currency-sign character does not occur in user text, so full-text
// matches never leak across section boundaries.
const SectionSeparator = "¤"

// GeocellPrecision is the geohash length stored for coarse geo bucketing.
const GeocellPrecision = 5

// Document is the denormalized index projection of one listing.
type Document struct {
	ID            string
	Title         string
	TitleKey      string
	ProviderTitle string
	SearchText    string
	Status        string
	City          string
	SettlementID  int64
	DirectionIDs  []int64
	MinAge        int
	MaxAge        int
	Price         int64
	PriceKey      string
	Rating        float64
	RatingKey     string
	Latitude      float64
	Longitude     float64
	Geocell       string
	Slots         []string
	Schedules     []listing.Schedule
	Seq           uint64
}

// FromListing builds the index document for a listing. The listing must be
// indexable; callers map non-indexable listings to delete operations instead.
// Returns an error for coordinates the index backend would reject.
func FromListing(l *listing.Listing) (*Document, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if !geo.ValidateCoordinates(l.Address.Latitude, l.Address.Longitude) {
		return nil, fmt.Errorf("listing %s: malformed geo point (%f, %f)",
			l.ID, l.Address.Latitude, l.Address.Longitude)
	}

	id := l.ID.String()
	return &Document{
		ID:            id,
		Title:         l.Title,
		TitleKey:      SortKey(collate.Key(l.Title), id),
		ProviderTitle: l.ProviderTitle,
		SearchText:    buildSearchText(l),
		Status:        string(l.Status),
		City:          l.Address.City,
		SettlementID:  l.Address.SettlementID,
		DirectionIDs:  append([]int64(nil), l.DirectionIDs...),
		MinAge:        l.MinAge,
		MaxAge:        l.MaxAge,
		Price:         l.Price,
		PriceKey:      SortKey(fmt.Sprintf("%012d", l.Price), id),
		Rating:        l.Rating,
		RatingKey:     SortKey(fmt.Sprintf("%08.4f", l.Rating), id),
		Latitude:      l.Address.Latitude,
		Longitude:     l.Address.Longitude,
		Geocell:       geohash.EncodeWithPrecision(l.Address.Latitude, l.Address.Longitude, GeocellPrecision),
		Slots:         FlattenSchedules(l.Schedules),
		Schedules:     append([]listing.Schedule(nil), l.Schedules...),
		Seq:           l.Seq,
	}, nil
}

// buildSearchText concatenates every descriptive block with the separator.
func buildSearchText(l *listing.Listing) string {
	parts := make([]string, 0, 2+len(l.Keywords)+2*len(l.Sections))
	parts = append(parts, l.Title, l.ProviderTitle)
	parts = append(parts, l.Keywords...)
	for _, s := range l.Sections {
		parts = append(parts, s.Name, s.Text)
	}
	return strings.Join(parts, SectionSeparator)
}

// FlattenSchedules expands schedule entries into per-slot tokens "d<w>h<h>",
// one per weekday/hour pair. Pairing stays per-entry, so a weekday+hour query
// matches only when a single entry covers both, mirroring per-entry relational
// rows.
func FlattenSchedules(schedules []listing.Schedule) []string {
	seen := make(map[string]struct{})
	var slots []string
	for _, s := range schedules {
		for wd := 0; wd < 7; wd++ {
			if s.Workdays&(1<<wd) == 0 {
				continue
			}
			for h := s.StartHour; h <= s.EndHour; h++ {
				tok := SlotToken(wd, h)
				if _, ok := seen[tok]; ok {
					continue
				}
				seen[tok] = struct{}{}
				slots = append(slots, tok)
			}
		}
	}
	sort.Strings(slots)
	return slots
}

// SlotToken names one weekday/hour cell. Weekday 0 is Monday.
func SlotToken(weekday, hour int) string {
	return fmt.Sprintf("d%dh%d", weekday, hour)
}

// SortKey builds a composite sortable value: a fixed-width primary key with
// the document id as suffix. The index backend sorts on a single field, so
// the id tie-break is baked into the field itself; ascending key order is
// (value asc, id asc) and descending is (value desc, id desc), which the
// relational ORDER BY clauses mirror.
func SortKey(primary, id string) string {
	return primary + "|" + id
}

// Fields serializes the document into flat hash fields for the index backend.
func (d *Document) Fields() map[string]string {
	dirs := make([]string, len(d.DirectionIDs))
	for i, id := range d.DirectionIDs {
		dirs[i] = strconv.FormatInt(id, 10)
	}
	sched, _ := json.Marshal(d.Schedules)

	return map[string]string{
		FieldID:            d.ID,
		FieldTitle:         d.Title,
		FieldTitleKey:      d.TitleKey,
		FieldProviderTitle: d.ProviderTitle,
		FieldSearchText:    d.SearchText,
		FieldStatus:        d.Status,
		FieldCity:          d.City,
		FieldSettlement:    strconv.FormatInt(d.SettlementID, 10),
		FieldDirections:    strings.Join(dirs, ","),
		FieldMinAge:        strconv.Itoa(d.MinAge),
		FieldMaxAge:        strconv.Itoa(d.MaxAge),
		FieldPrice:         strconv.FormatInt(d.Price, 10),
		FieldPriceKey:      d.PriceKey,
		FieldRating:        strconv.FormatFloat(d.Rating, 'f', -1, 64),
		FieldRatingKey:     d.RatingKey,
		FieldGeo:           fmt.Sprintf("%f,%f", d.Longitude, d.Latitude),
		FieldGeocell:       d.Geocell,
		FieldSched:         strings.Join(d.Slots, ","),
		FieldSchedules:     string(sched),
		FieldSeq:           strconv.FormatUint(d.Seq, 10),
	}
}
