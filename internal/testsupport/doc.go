// Package testsupport provides helpers shared by the package tests:
// synthetic response stage cascades, StationXML generation, and temporary
// reference-library trees laid out the way the NRL is.
package testsupport
