// Package x2sys wraps the GMT x2sys supplement: Init creates a track
// database tag and Cross computes crossovers between tracks.
//
// Both programs keep their settings under $X2SYS_HOME, which must be set
// before either runs.
package x2sys
