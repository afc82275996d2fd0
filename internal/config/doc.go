// Package config defines the format-agnostic model of a paper-build project.
//
// A concrete loader (currently the HCL one in internal/hcl) parses a
// buildfile from disk and translates it into this model. Everything
// downstream of loading (planning, execution, the ledger) depends only on
// these types, never on the source format.
package config
