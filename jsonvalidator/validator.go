package jsonvalidator

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dirschema/dirschema-go/schemaresolve"
	"github.com/dirschema/dirschema-go/treeadapter"
)

// JSONSchemaValidator is the default Validator backed by
// santhosh-tekuri/jsonschema/v5. Compiled schemas are cached by resolved
// key across the lifetime of the validator, matching §5's memoization
// guidance ("rule document is immutable" so invalidation is not required).
type JSONSchemaValidator struct {
	mu      sync.Mutex
	cache   map[string]*jsonschema.Schema
	plugins map[string]Plugin
}

// New creates an empty JSONSchemaValidator with no registered plugins.
func New() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		cache:   make(map[string]*jsonschema.Schema),
		plugins: make(map[string]Plugin),
	}
}

// Validate implements Validator.
func (v *JSONSchemaValidator) Validate(resolved schemaresolve.Resolved, value any) ([]Diagnostic, error) {
	if resolved.Kind == 0 && resolved.Inline == nil && resolved.URI == "" {
		return nil, fmt.Errorf("jsonvalidator: empty schema reference")
	}

	compiled, err := v.compile(resolved)
	if err != nil {
		return nil, fmt.Errorf("jsonvalidator: schema resolution failed: %w", err)
	}

	if err := compiled.Validate(value); err != nil {
		valErr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, fmt.Errorf("jsonvalidator: %w", err)
		}
		return diagnosticsFromValidationError(valErr), nil
	}
	return nil, nil
}

// RegisterPlugin implements Validator.
func (v *JSONSchemaValidator) RegisterPlugin(name string, impl Plugin) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.plugins[name] = impl
}

// InvokePlugin implements Validator.
func (v *JSONSchemaValidator) InvokePlugin(name, targetPath, argument string, adapter treeadapter.Adapter) error {
	v.mu.Lock()
	plugin, ok := v.plugins[name]
	v.mu.Unlock()
	if !ok {
		return fmt.Errorf("jsonvalidator: plugin %q is not registered", name)
	}
	return plugin(targetPath, argument, adapter)
}

func (v *JSONSchemaValidator) compile(resolved schemaresolve.Resolved) (*jsonschema.Schema, error) {
	key, err := cacheKey(resolved)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	if cached, ok := v.cache[key]; ok {
		v.mu.Unlock()
		return cached, nil
	}
	v.mu.Unlock()

	compiler := jsonschema.NewCompiler()
	compiler.LoadURL = loadSchemaURL

	var schemaURL string
	switch resolved.Kind {
	case schemaresolve.KindInline:
		payload, err := json.Marshal(resolved.Inline)
		if err != nil {
			return nil, fmt.Errorf("encode inline schema: %w", err)
		}
		// key holds raw JSON, which is not valid in a URL host; escape it
		// into the path so the resource URL parses.
		schemaURL = "memory://inline/" + url.PathEscape(key)
		if err := compiler.AddResource(schemaURL, strings.NewReader(string(payload))); err != nil {
			return nil, fmt.Errorf("add inline schema resource: %w", err)
		}
	case schemaresolve.KindLocalFile:
		schemaURL = "file://" + resolved.URI
	case schemaresolve.KindRemote:
		schemaURL = resolved.URI
	default:
		return nil, fmt.Errorf("cannot compile schema of kind %v", resolved.Kind)
	}

	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.cache[key] = compiled
	v.mu.Unlock()
	return compiled, nil
}

func cacheKey(resolved schemaresolve.Resolved) (string, error) {
	switch resolved.Kind {
	case schemaresolve.KindInline:
		payload, err := json.Marshal(resolved.Inline)
		if err != nil {
			return "", fmt.Errorf("encode inline schema: %w", err)
		}
		return "inline:" + string(payload), nil
	case schemaresolve.KindLocalFile, schemaresolve.KindRemote:
		return "uri:" + resolved.URI, nil
	default:
		return "", fmt.Errorf("cannot key schema of kind %v", resolved.Kind)
	}
}

// loadSchemaURL is the compiler's URL loader, mirroring
// gofulmen/schema/validator.go's localLoader.Load but generalized: file://
// URIs open from the local filesystem, http(s):// URIs fetch verbatim (per
// §4.3 "fetched verbatim"), and everything else is rejected rather than
// guessed at.
func loadSchemaURL(rawURL string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(rawURL, "file://"):
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, err
		}
		return os.Open(u.Path) // #nosec G304 -- schema path resolved by schemaresolve from a trusted rule document
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		resp, err := http.Get(rawURL) // #nosec G107 -- remote schema fetch is an explicit SchemaResolver capability
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
		}
		return resp.Body, nil
	default:
		return nil, fmt.Errorf("unsupported schema reference: %s", rawURL)
	}
}

func diagnosticsFromValidationError(err *jsonschema.ValidationError) []Diagnostic {
	if err == nil {
		return nil
	}
	var diags []Diagnostic
	stack := []*jsonschema.ValidationError{err}
	for len(stack) > 0 {
		current := stack[0]
		stack = stack[1:]
		diags = append(diags, Diagnostic{
			Pointer:  current.InstanceLocation,
			Keyword:  trimKeyword(current.KeywordLocation),
			Message:  current.Message,
			Severity: SeverityError,
		})
		stack = append(stack, current.Causes...)
	}
	return diags
}

func trimKeyword(keyword string) string {
	if idx := strings.IndexRune(keyword, '#'); idx >= 0 {
		return keyword[idx+1:]
	}
	return keyword
}
