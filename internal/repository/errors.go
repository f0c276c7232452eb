package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the
// repository. This abstracts away the underlying storage implementation
// from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
// The unique index on voter_submissions.voter_name is the authoritative
// one-submission-per-voter defense; services translate this into an
// "already voted" conflict rather than trusting the pre-check alone.
var ErrDuplicate = errors.New("duplicate record")
