package recon

import (
	"errors"
	"fmt"
)

// ParseError reports an unparseable field in a raw transaction row. The row
// is dropped (or quarantined by the caller), never fatal to the batch.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("cannot parse %s %q", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigError reports a threshold or weight outside its valid range.
// Engine construction fails fast on these; silently clamping would produce
// misleading confidences.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// MergeConflict reports a duplicate group whose merged representative cannot
// be constructed. The group is left unmerged and its members pass through
// individually, with a warning attached to the run summary.
type MergeConflict struct {
	MemberIDs []int64
	Reason    string
}

func (e *MergeConflict) Error() string {
	return fmt.Sprintf("cannot merge duplicate group %v: %s", e.MemberIDs, e.Reason)
}

// ErrScoringUnavailable marks a failed or timed-out semantic scorer call.
// The engine falls back to the rule-based score and logs it; it is never
// surfaced as a run failure.
var ErrScoringUnavailable = errors.New("semantic scoring unavailable")
