// Package diagnostic records why a record field produced no span.
//
// A diagnostic is data, not an error: alignment of the remaining fields
// continues and the caller decides whether a missing span matters.
//
// Reasons, most informative first:
//   - text_too_long: the text exceeds the search bound
//   - overlap_rejected: a candidate was found but collided with an accepted span
//   - context_mismatch: the value occurs, never with the requested context
//   - not_found: no acceptable occurrence
package diagnostic
