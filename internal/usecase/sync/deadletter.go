package sync

// DefaultMaxAttempts bounds retries of a document that keeps failing with the
// same source seq before it is parked.
const DefaultMaxAttempts = 3

type deadEntry struct {
	seq      uint64
	attempts int
}

// deadLetter tracks per-document failure attempts so a poison record cannot
// block checkpoint convergence forever. A parked document is skipped until
// its source seq changes, which resets the attempt count. Not safe for
// concurrent use; the engine serializes access through its cycle lease.
type deadLetter struct {
	maxAttempts int
	entries     map[string]deadEntry
}

func newDeadLetter(maxAttempts int) *deadLetter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &deadLetter{maxAttempts: maxAttempts, entries: make(map[string]deadEntry)}
}

// Exhausted reports whether the document has burned all attempts at this seq.
func (d *deadLetter) Exhausted(id string, seq uint64) bool {
	e, ok := d.entries[id]
	return ok && e.seq == seq && e.attempts >= d.maxAttempts
}

// RecordFailure counts one failed attempt and returns the total for this seq.
// A seq change restarts the count at one.
func (d *deadLetter) RecordFailure(id string, seq uint64) int {
	e, ok := d.entries[id]
	if !ok || e.seq != seq {
		e = deadEntry{seq: seq}
	}
	e.attempts++
	d.entries[id] = e
	return e.attempts
}

// Resolve clears the document after a successful write.
func (d *deadLetter) Resolve(id string) {
	delete(d.entries, id)
}

// Len returns the number of tracked documents.
func (d *deadLetter) Len() int { return len(d.entries) }
