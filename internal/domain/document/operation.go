package document

import "github.com/listdex/listdex/internal/domain/listing"

// OpKind discriminates bulk index operations.
type OpKind int

// Bulk operation kinds.
const (
	OpUpsert OpKind = iota
	OpDelete
)

func (k OpKind) String() string {
	if k == OpDelete {
		return "delete"
	}
	return "upsert"
}

// Operation is one entry of a bulk index write, keyed by document id.
type Operation struct {
	Kind OpKind
	ID   string
	Seq  uint64
	Doc  *Document // nil for deletes
}

// OperationFor maps a changed listing to its index operation. Listings that
// fail the soft-delete/closed check become deletions; everything else becomes
// an upsert. A mapping error (e.g. malformed geo point) is a per-document
// rejection, not a batch failure.
func OperationFor(l *listing.Listing) (Operation, error) {
	if !l.Indexable() {
		return Operation{Kind: OpDelete, ID: l.ID.String(), Seq: l.Seq}, nil
	}
	doc, err := FromListing(l)
	if err != nil {
		return Operation{Kind: OpUpsert, ID: l.ID.String(), Seq: l.Seq}, err
	}
	return Operation{Kind: OpUpsert, ID: doc.ID, Seq: l.Seq, Doc: doc}, nil
}
