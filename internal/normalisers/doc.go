// Package normalisers provides implementations of the Normaliser interface
// for the supported document formats. Each normaliser knows how to extract
// plain text from one family of file extensions.
//
// Normalisers are registered with the Registry at startup, which dispatches
// on the lower-cased extension and prefers higher priorities.
package normalisers
