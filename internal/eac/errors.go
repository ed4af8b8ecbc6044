package eac

import "errors"

// Operation errors. Callers wrap with fmt.Errorf("...: %w", err) and
// test with errors.Is.
var (
	// ErrAppNotFound reports that the application has no decodable
	// record in the store. An undecodable record and a missing one are
	// deliberately indistinguishable.
	ErrAppNotFound = errors.New("app not found in database")

	// ErrActivityNotFound reports a scoped disable naming an activity
	// with no entry in the application's map.
	ErrActivityNotFound = errors.New("activity not found")

	// ErrUnknownApp reports a quick-enable for an application missing
	// from the preset catalog.
	ErrUnknownApp = errors.New("app not in known apps catalog")

	// ErrWrite reports that the store rejected the encoded record. The
	// store keeps its prior state.
	ErrWrite = errors.New("store write failed")

	// errMapMalformed marks a record whose activityConfigMap is
	// present but not a JSON object. Surfaced as ErrAppNotFound.
	errMapMalformed = errors.New("activityConfigMap is not an object")
)
