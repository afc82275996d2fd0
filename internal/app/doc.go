// Package app wires the configured pieces of paperpress together: it builds
// the logger, loads the buildfile through a config.Loader, opens the build
// ledger, and hands a pipeline.Driver the resulting project model.
package app
