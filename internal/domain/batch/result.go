// Package batch carries per-item outcomes of bulk index operations.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of applying one document operation in a bulk write.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed batch result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the document identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// OK reports whether the item was applied.
func (r Result) OK() bool { return r.status == StatusOK }

// Count returns the number of applied and failed items in results.
func Count(results []Result) (applied, failed int) {
	for _, r := range results {
		if r.OK() {
			applied++
		} else {
			failed++
		}
	}
	return applied, failed
}
