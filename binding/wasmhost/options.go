package wasmhost

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/rttr/resource"
)

// DefaultModuleName is the host module name used when Options leaves it
// empty.
const DefaultModuleName = "rttr"

// ExportsSuffix is appended to the module name for the module that
// re-exports the host functions to Go callers.
const ExportsSuffix = ".exports"

// Options configures a Host.
type Options struct {
	// ModuleName is the name guests import the functions from.
	ModuleName string

	// Registerer receives the call counters. Nil leaves them unregistered.
	Registerer prometheus.Registerer

	// Table holds guest-visible objects. A private table is created when nil.
	Table *resource.Table

	// IncludeHidden exports members flagged FlagHidden.
	IncludeHidden bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{ModuleName: DefaultModuleName}
}
