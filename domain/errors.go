package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("internal server error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("your requested item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("your item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("given param is not valid")
	// ErrCacheMiss means the key is not present in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnauthenticated is returned when no valid user id accompanies a request
	ErrUnauthenticated = errors.New("user not authenticated")
	// ErrTargetNotFound is returned when a vote or rank request names a target that does not exist
	ErrTargetNotFound = errors.New("votable target not found")
	// ErrInvalidDirection is returned for a direction other than up or down
	ErrInvalidDirection = errors.New("direction must be up or down")
	// ErrInvalidTargetKind is returned for a target kind other than place or collection
	ErrInvalidTargetKind = errors.New("target kind must be place or collection")

	// ErrDuplicateVote reports a unique-key violation on the vote ledger.
	// It never leaves the vote service.
	ErrDuplicateVote = errors.New("vote already exists")
	// ErrAggregateDrift tags log entries written when a recount disagrees
	// with the stored aggregate.
	ErrAggregateDrift = errors.New("aggregate drift detected")
)
