package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/listdex/listdex/internal/domain/listing"
)

const seedPageSQL = `
SELECT l.seq, ` + listingColumns + `
FROM listings l
WHERE l.status = 'open' AND NOT l.deleted AND l.id > $1
ORDER BY l.id
LIMIT $2`

// FetchPage returns the next page of indexable listings strictly after the
// given id, ordered by id. A full reindex pages through the whole table with
// it.
func (r *Repo) FetchPage(ctx context.Context, after uuid.UUID, limit int) ([]listing.Listing, error) {
	rows, err := r.q.Query(ctx, seedPageSQL, after, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch seed page: %w", err)
	}
	defer rows.Close()

	var out []listing.Listing
	for rows.Next() {
		var seq uint64
		l, err := scanListing(rows, &seq)
		if err != nil {
			return nil, fmt.Errorf("scan seed row: %w", err)
		}
		l.Seq = seq
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch seed page: %w", err)
	}
	return out, nil
}
