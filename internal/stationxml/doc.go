// Package stationxml reads the subset of FDSN StationXML the reference
// library uses: the response stage cascade of a single channel. PolesZeros,
// Coefficients, and FIR stage bodies are recognized; anything else degrades
// to a generic stage keeping its gain and decimation.
package stationxml
