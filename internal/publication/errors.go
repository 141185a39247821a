package publication

import (
	"errors"
	"fmt"
)

// Record defects that block normalization. The operator chases these
// upstream; the tool never fills in a guess.
var (
	// ErrNoPMID indicates a record without a PMID.
	ErrNoPMID = errors.New("record has no PMID")

	// ErrMissingTitle indicates a record without a title.
	ErrMissingTitle = errors.New("record has no title")

	// ErrMissingDate indicates a record whose publication date is absent
	// or unreadable.
	ErrMissingDate = errors.New("record has no parseable publication date")
)

// RecordError describes a defective upstream record.
type RecordError struct {
	PMID  string // Identifier of the offending record, if known
	Field string // MEDLINE tag, e.g. "TI", "DP"
	Err   error
}

func (e *RecordError) Error() string {
	if e.PMID == "" {
		return fmt.Sprintf("record field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("PMID %s field %s: %v", e.PMID, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
