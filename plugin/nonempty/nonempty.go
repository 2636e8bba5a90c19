// Package nonempty implements a sample jsonvalidator.Plugin: it requires
// the target path to exist and load as JSON whose value is not null, an
// empty object, an empty array, or an empty string (numbers and booleans
// always pass). It demonstrates the "v#NAME://ARG"
// plugin pseudo-URI dispatch path (§4.3, §6) with a rule like:
//
//	validMeta: "v#nonempty://"
//
// grounded on gofulmen's schema/registry.go plugin-style registration
// idiom, adapted to the (targetPath, argument, adapter) signature §6
// specifies for JsonValidator plugins.
package nonempty

import (
	"fmt"

	"github.com/dirschema/dirschema-go/jsonvalidator"
	"github.com/dirschema/dirschema-go/treeadapter"
)

// Name is the plugin name registered with a jsonvalidator.Validator.
const Name = "nonempty"

// Plugin is the jsonvalidator.Plugin implementation. The argument string is
// ignored; it requires nothing beyond the target path resolving to a
// non-empty JSON document.
func Plugin(targetPath, argument string, adapter treeadapter.Adapter) error {
	if !adapter.Exists(targetPath) {
		return fmt.Errorf("nonempty: %s does not exist", targetPath)
	}
	value, err := adapter.LoadJSON(targetPath)
	if err != nil {
		return fmt.Errorf("nonempty: %s: %w", targetPath, err)
	}
	if isEmpty(value) {
		return fmt.Errorf("nonempty: %s is empty", targetPath)
	}
	return nil
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case string:
		return v == ""
	default:
		return false
	}
}

// Register registers Plugin with v under Name, a convenience matching the
// registration call sites in driver/cmd wiring.
func Register(v jsonvalidator.Validator) {
	v.RegisterPlugin(Name, Plugin)
}
