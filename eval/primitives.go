package eval

import (
	"fmt"
	"strings"

	"github.com/dirschema/dirschema-go/rule"
	"github.com/dirschema/dirschema-go/schemaresolve"
)

// evalType implements the "type" primitive of §4.5 step 4.
func (e *Evaluator) evalType(tc rule.TypeConstraint, path string) *Report {
	switch tc.Kind {
	case rule.TypeFile:
		if !e.Adapter.IsFile(path) {
			return &Report{Message: "expected a file"}
		}
	case rule.TypeDir:
		if !e.Adapter.IsDir(path) {
			return &Report{Message: "expected a directory"}
		}
	default: // rule.TypeExists
		exists := e.Adapter.Exists(path)
		if tc.Exists && !exists {
			return &Report{Message: "path does not exist"}
		}
		if !tc.Exists && exists {
			return &Report{Message: "path must not exist"}
		}
	}
	return nil
}

// evalValid implements the "valid" primitive: exists(path), load_json(path),
// then validates against the resolved schema (§4.5 step 4).
func (e *Evaluator) evalValid(ref rule.SchemaRef, path string) *Report {
	if !e.Adapter.Exists(path) {
		return &Report{Message: "path does not exist"}
	}
	return e.validateAgainst(ref, path)
}

// evalValidMeta implements the "validMeta" primitive: computes the
// companion path, then requires the chain (path exists, companion exists
// and loads as JSON, validates against the resolved schema).
func (e *Evaluator) evalValidMeta(ref rule.SchemaRef, path string) *Report {
	if !e.Adapter.Exists(path) {
		return &Report{Message: "path does not exist"}
	}
	companion := e.Convention.Companion(path, e.Adapter.IsDir(path))
	if !e.Adapter.Exists(companion) {
		return &Report{Message: fmt.Sprintf("missing companion %s", companion)}
	}
	return e.validateAgainst(ref, companion)
}

// validateAgainst resolves ref (a plugin pseudo-URI is legal here per §4.3)
// against target: either invokes the named plugin with target as the
// plugin's target path, or loads target as JSON and validates it against
// the resolved schema. Callers pass the companion path for validMeta and
// the data path for valid, so a plugin always receives the same path the
// schema is actually judging.
func (e *Evaluator) validateAgainst(ref rule.SchemaRef, target string) *Report {
	resolved, err := e.Resolver.Resolve(ref)
	if err != nil {
		// Schema resolution failure: fatal to this path, but reported as a
		// primitive failure, not a Go error (§7).
		return &Report{Message: fmt.Sprintf("schema resolution failed: %v", err)}
	}

	if resolved.Kind == schemaresolve.KindPlugin {
		if err := e.Validator.InvokePlugin(resolved.PluginName, target, resolved.Argument, e.Adapter); err != nil {
			return &Report{Message: err.Error()}
		}
		return nil
	}

	value, err := e.Adapter.LoadJSON(target)
	if err != nil {
		return &Report{Message: fmt.Sprintf("failed to load JSON: %v", err)}
	}

	diags, err := e.Validator.Validate(resolved, value)
	if err != nil {
		return &Report{Message: err.Error()}
	}
	if len(diags) > 0 {
		messages := make([]string, 0, len(diags))
		for _, d := range diags {
			if d.Pointer != "" {
				messages = append(messages, fmt.Sprintf("%s: %s", d.Pointer, d.Message))
			} else {
				messages = append(messages, d.Message)
			}
		}
		return &Report{Message: strings.Join(messages, "; ")}
	}
	return nil
}
