// Package signature computes deterministic fingerprints of response stage
// cascades.
//
// Three modes exist: a sensor signature hashing only the first stage, an
// exact datalogger signature including analog and digital gain terms, and a
// family signature covering filter shape alone. All floats are rounded to
// five significant figures before hashing so independently produced
// descriptions of the same instrument collide. Passthrough stages (empty or
// unity coefficient lists) never contribute to datalogger signatures.
package signature
