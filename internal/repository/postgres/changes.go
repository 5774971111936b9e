package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/listdex/listdex/internal/domain/listing"
)

// listingColumns selects the full aggregate; schedules and sections are
// folded in as JSON so one row carries one listing.
const listingColumns = `
	l.id, l.title, l.provider_title, l.keywords, l.status, l.deleted,
	l.street, l.city, l.settlement_id, l.latitude, l.longitude,
	l.min_age, l.max_age, l.price, l.direction_ids, l.rating,
	(SELECT coalesce(jsonb_agg(jsonb_build_object(
		'workdays', s.workdays, 'start_hour', s.start_hour, 'end_hour', s.end_hour)), '[]'::jsonb)
	 FROM listing_schedules s WHERE s.listing_id = l.id) AS schedules,
	(SELECT coalesce(jsonb_agg(jsonb_build_object(
		'name', d.name, 'text', d.text)), '[]'::jsonb)
	 FROM listing_sections d WHERE d.listing_id = l.id) AS sections`

const fetchChangesSQL = `
SELECT c.seq, ` + listingColumns + `
FROM listing_changes c
JOIN listings l ON l.id = c.listing_id
WHERE c.seq > $1
ORDER BY c.seq
LIMIT $2`

// FetchSince returns up to limit changed listings with seq strictly above the
// checkpoint, oldest change first. Each returned listing carries the seq of
// the change row that produced it.
func (r *Repo) FetchSince(ctx context.Context, checkpoint uint64, limit int) ([]listing.Listing, error) {
	rows, err := r.q.Query(ctx, fetchChangesSQL, checkpoint, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch changes: %w", err)
	}
	defer rows.Close()

	var out []listing.Listing
	for rows.Next() {
		var seq uint64
		l, err := scanListing(rows, &seq)
		if err != nil {
			return nil, fmt.Errorf("scan change row: %w", err)
		}
		l.Seq = seq
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch changes: %w", err)
	}
	return out, nil
}

// scanListing reads one aggregate row. When seq is non-nil it is scanned as
// the leading column.
func scanListing(rows pgx.Rows, seq *uint64) (listing.Listing, error) {
	var (
		l         listing.Listing
		status    string
		schedules []byte
		sections  []byte
	)

	dest := []any{
		&l.ID, &l.Title, &l.ProviderTitle, &l.Keywords, &status, &l.Deleted,
		&l.Address.Street, &l.Address.City, &l.Address.SettlementID,
		&l.Address.Latitude, &l.Address.Longitude,
		&l.MinAge, &l.MaxAge, &l.Price, &l.DirectionIDs, &l.Rating,
		&schedules, &sections,
	}
	if seq != nil {
		dest = append([]any{seq}, dest...)
	}
	if err := rows.Scan(dest...); err != nil {
		return listing.Listing{}, err
	}

	l.Status = listing.Status(status)
	if err := json.Unmarshal(schedules, &l.Schedules); err != nil {
		return listing.Listing{}, fmt.Errorf("listing %s: schedules: %w", l.ID, err)
	}
	if err := json.Unmarshal(sections, &l.Sections); err != nil {
		return listing.Listing{}, fmt.Errorf("listing %s: sections: %w", l.ID, err)
	}
	return l, nil
}
