// Package family derives canonical instrument family names from NRL model
// strings. Model strings encode variant parameters as inline codes
// (PG4 for a 4x preamp gain, FR120 for a 120 Hz sample rate, LP1.0 for a
// low-pass corner); stripping them leaves the base model shared by the
// whole family. Rule evaluation order is a correctness requirement, not an
// optimization: prefixed forms must match before bare forms.
package family
