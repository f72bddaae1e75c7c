// Package logging provides leveled logging for the indexing engine.
// The level is taken from the LOG_LEVEL environment variable (or DEBUG=true)
// and can be overridden at runtime with SetLevel.
package logging
