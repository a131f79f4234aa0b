// Package nrlindex builds, persists, and serves the signature index over a
// reference response library laid out like the IRIS Nominal Response
// Library: sensor/ and datalogger/ subtrees of
// <manufacturer>/<model...>/<response>.xml files with sectioned descriptor
// .txt files alongside.
//
// The index maps three signature spaces to instrument descriptors: sensor
// signatures, gain-sensitive datalogger signatures, and gain-independent
// datalogger family signatures. A build produces an immutable Snapshot that
// is published atomically; queries never observe a half-built index. The
// persisted artifact is a versioned JSON document invalidated by a content
// hash of the library tree.
package nrlindex
