// Package index implements the bulk index writer over the db.Store facade.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/listdex/listdex/internal/db"
	"github.com/listdex/listdex/internal/domain/batch"
	"github.com/listdex/listdex/internal/domain/document"
)

// KeyPrefix namespaces listing document keys in the backend.
const KeyPrefix = "listing:"

// IndexName is the FT index over listing documents.
const IndexName = "listings-idx"

// store is the consumer interface for index writes (ISP).
type store interface {
	HSetBulk(ctx context.Context, items []db.HashSetItem) ([]db.BulkOutcome, error)
	DelBulk(ctx context.Context, keys []string) ([]db.BulkOutcome, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements usecase/sync.IndexWriter.
type Repo struct {
	store store
}

// New creates an index writer repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Key returns the backend key for a document id.
func Key(id string) string {
	return KeyPrefix + id
}

// Definition returns the FT index schema for listing documents. Fields used
// in SORTBY clauses are marked SORTABLE.
func Definition() *db.IndexDefinition {
	return db.NewIndex(IndexName).
		Prefix(KeyPrefix).
		Tag(document.FieldID).Sortable().
		Tag(document.FieldStatus).
		Tag(document.FieldCity).
		Tag(document.FieldSettlement).
		TagWithOpts(document.FieldDirections, ",", false).
		Tag(document.FieldGeocell).
		TagWithOpts(document.FieldSched, ",", false).
		Text(document.FieldSearchText).
		Tag(document.FieldTitleKey).Sortable().
		Tag(document.FieldPriceKey).Sortable().
		Tag(document.FieldRatingKey).Sortable().
		Numeric(document.FieldMinAge).
		Numeric(document.FieldMaxAge).
		Numeric(document.FieldPrice).
		Numeric(document.FieldRating).
		Numeric(document.FieldSeq).
		Geo(document.FieldGeo).
		MustBuild()
}

// EnsureIndex creates the listing index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("probe index %s: %w", IndexName, err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, Definition()); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// BulkApply writes a batch of upsert/delete operations and reports one
// outcome per operation, in input order. A non-nil error means the backend
// was unreachable and nothing is known about individual documents; the caller
// must not advance its checkpoint.
func (r *Repo) BulkApply(ctx context.Context, ops []document.Operation) ([]batch.Result, error) {
	if len(ops) == 0 {
		return nil, nil
	}

	var (
		upserts    []db.HashSetItem
		upsertIdx  []int
		deleteKeys []string
		deleteIdx  []int
	)
	results := make([]batch.Result, len(ops))

	for i, op := range ops {
		switch {
		case op.Kind == document.OpDelete:
			deleteKeys = append(deleteKeys, Key(op.ID))
			deleteIdx = append(deleteIdx, i)
		case op.Doc == nil:
			results[i] = batch.NewError(op.ID, fmt.Errorf("upsert %s: missing document", op.ID))
		default:
			upserts = append(upserts, db.HashSetItem{Key: Key(op.ID), Fields: op.Doc.Fields()})
			upsertIdx = append(upsertIdx, i)
		}
	}

	if len(upserts) > 0 {
		outcomes, err := r.store.HSetBulk(ctx, upserts)
		if err != nil {
			return nil, fmt.Errorf("bulk upsert: %w", err)
		}
		for j, o := range outcomes {
			i := upsertIdx[j]
			if o.Err != nil {
				results[i] = batch.NewError(ops[i].ID, o.Err)
			} else {
				results[i] = batch.NewOK(ops[i].ID)
			}
		}
	}

	if len(deleteKeys) > 0 {
		outcomes, err := r.store.DelBulk(ctx, deleteKeys)
		if err != nil {
			return nil, fmt.Errorf("bulk delete: %w", err)
		}
		for j, o := range outcomes {
			i := deleteIdx[j]
			if o.Err != nil {
				results[i] = batch.NewError(ops[i].ID, o.Err)
			} else {
				results[i] = batch.NewOK(ops[i].ID)
			}
		}
	}

	return results, nil
}
