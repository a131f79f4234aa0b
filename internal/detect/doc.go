// Package detect matches instrument responses against an index snapshot.
//
// A query computes the response's sensor and datalogger signatures, looks
// them up, and ranks colliding candidates by gain-ratio agreement. Every
// failure mode degrades to an empty or zero-confidence result; Detect
// never returns an error.
package detect
