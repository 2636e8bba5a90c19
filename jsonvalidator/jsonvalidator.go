// Package jsonvalidator implements the JsonValidator external interface
// from §6: validating a JSON value against a resolved schema, and
// dispatching to registered validation plugins for "v#NAME://ARG" schema
// references.
//
// The concrete implementation wraps
// github.com/santhosh-tekuri/jsonschema/v5, the same backend gofulmen's
// schema package uses (schema/validator.go), with the same "compile once,
// cache by key" discipline as schema/registry.go's SchemaRegistry.
package jsonvalidator

import (
	"github.com/dirschema/dirschema-go/schemaresolve"
	"github.com/dirschema/dirschema-go/treeadapter"
)

// SeverityLevel mirrors gofulmen's schema.SeverityLevel taxonomy.
type SeverityLevel string

const (
	SeverityError SeverityLevel = "ERROR"
	SeverityWarn  SeverityLevel = "WARN"
)

// Diagnostic captures one validation failure location, grounded on
// gofulmen/schema/diagnostics.go's Diagnostic (pointer/keyword/message).
type Diagnostic struct {
	Pointer  string
	Keyword  string
	Message  string
	Severity SeverityLevel
}

// Plugin implements a custom validator invoked for "v#NAME://ARG" schema
// references, per §6: "(target_path, argument_string, adapter) -> Ok |
// ValidationError".
type Plugin func(targetPath string, argument string, adapter treeadapter.Adapter) error

// Validator is the JsonValidator external interface (§6).
type Validator interface {
	// Validate validates value against the already-resolved schema
	// reference. A nil, nil return means the value is valid. A non-nil
	// diagnostics slice (with nil error) means the value failed
	// validation. A non-nil error means schema resolution/compilation
	// itself failed (§7 "Schema resolution failure").
	Validate(resolved schemaresolve.Resolved, value any) ([]Diagnostic, error)

	// RegisterPlugin registers a named plugin implementation.
	RegisterPlugin(name string, impl Plugin)

	// InvokePlugin runs a registered plugin against targetPath/argument.
	// Returns an error identifying an unregistered plugin name or the
	// plugin's own ValidationError.
	InvokePlugin(name, targetPath, argument string, adapter treeadapter.Adapter) error
}
