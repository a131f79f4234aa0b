// Package stage defines the read-only response stage model consumed by the
// fingerprinting and detection packages. A response is an ordered cascade of
// stages; each stage is a tagged variant (generic, poles/zeros, or
// coefficients) exposing only the fields meaningful to that variant.
package stage
