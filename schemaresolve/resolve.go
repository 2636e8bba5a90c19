// Package schemaresolve resolves a rule.SchemaRef -- an inline JSON Schema
// object or a string URI -- to either a concrete schema document reference
// or a plugin invocation, per §4.3.
//
// The URI-scheme dispatch here mirrors gofulmen/schema/validator.go's
// localLoader.Load: a small switch over recognized prefixes, falling
// through to a bare-relative-path case resolved against a base directory.
package schemaresolve

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dirschema/dirschema-go/rule"
)

// Kind classifies a resolved schema reference.
type Kind int

const (
	// KindInline is an inline JSON Schema object, returned as-is.
	KindInline Kind = iota
	// KindRemote is an http(s):// URL; fetching is the JsonValidator's
	// concern (§4.3), the resolver only returns the URI verbatim.
	KindRemote
	// KindLocalFile is a resolved absolute local filesystem path.
	KindLocalFile
	// KindPlugin is a "v#NAME://ARG" plugin pseudo-URI.
	KindPlugin
)

// Resolved is the output of resolving a rule.SchemaRef.
type Resolved struct {
	Kind Kind

	// Populated when Kind == KindInline.
	Inline map[string]any

	// Populated when Kind == KindRemote or KindLocalFile.
	URI string

	// Populated when Kind == KindPlugin.
	PluginName string
	Argument   string
}

// Options configures base-directory resolution for relative references.
type Options struct {
	// LocalBase is the directory "local://" URIs resolve against.
	// cmd/dirschema sets it to the directory of the dirschema document; the
	// Resolver applies no default of its own, so an empty LocalBase leaves
	// "local://" paths relative.
	LocalBase string
	// WorkingDir is the directory "cwd://" URIs (and bare relative paths,
	// unless RelativeBaseIsLocal is set) resolve against.
	WorkingDir string
	// RelativeBaseIsLocal routes bare relative paths through LocalBase
	// instead of WorkingDir -- the "unless a relative-base override is
	// configured" clause of §4.3.
	RelativeBaseIsLocal bool
}

// Resolver resolves rule.SchemaRef values using the configured Options.
type Resolver struct {
	opts Options
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// Resolve implements the dispatch table of §4.3. It is legal to call with a
// SchemaRef carrying a plugin pseudo-URI only for "valid"/"validMeta"
// fields; callers resolving a "$ref" context should use ResolveNonPlugin.
func (r *Resolver) Resolve(ref rule.SchemaRef) (Resolved, error) {
	if ref.IsInline {
		return Resolved{Kind: KindInline, Inline: ref.Inline}, nil
	}
	return r.resolveURI(ref.Reference)
}

// ResolveNonPlugin resolves a reference where a plugin pseudo-URI is
// illegal (§4.3: "Legal only as a value of valid/validMeta, never as $ref
// or schema body").
func (r *Resolver) ResolveNonPlugin(ref rule.SchemaRef) (Resolved, error) {
	resolved, err := r.Resolve(ref)
	if err != nil {
		return Resolved{}, err
	}
	if resolved.Kind == KindPlugin {
		return Resolved{}, fmt.Errorf("schemaresolve: plugin pseudo-URI not legal in this context: %s", ref.Reference)
	}
	return resolved, nil
}

func (r *Resolver) resolveURI(raw string) (Resolved, error) {
	switch {
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return Resolved{Kind: KindRemote, URI: raw}, nil

	case strings.HasPrefix(raw, "file://"):
		return Resolved{Kind: KindLocalFile, URI: strings.TrimPrefix(raw, "file://")}, nil

	case filepath.IsAbs(raw):
		return Resolved{Kind: KindLocalFile, URI: raw}, nil

	case strings.HasPrefix(raw, "local://"):
		rel := strings.TrimPrefix(raw, "local://")
		return Resolved{Kind: KindLocalFile, URI: filepath.Join(r.opts.LocalBase, rel)}, nil

	case strings.HasPrefix(raw, "cwd://"):
		rel := strings.TrimPrefix(raw, "cwd://")
		return Resolved{Kind: KindLocalFile, URI: filepath.Join(r.opts.WorkingDir, rel)}, nil

	case isPluginURI(raw):
		name, arg := splitPluginURI(raw)
		return Resolved{Kind: KindPlugin, PluginName: name, Argument: arg}, nil

	default:
		base := r.opts.WorkingDir
		if r.opts.RelativeBaseIsLocal {
			base = r.opts.LocalBase
		}
		return Resolved{Kind: KindLocalFile, URI: filepath.Join(base, raw)}, nil
	}
}

// isPluginURI reports whether raw has the "v#NAME://ARG" shape.
func isPluginURI(raw string) bool {
	if !strings.HasPrefix(raw, "v#") {
		return false
	}
	return strings.Contains(raw, "://")
}

func splitPluginURI(raw string) (name, arg string) {
	rest := strings.TrimPrefix(raw, "v#")
	idx := strings.Index(rest, "://")
	if idx < 0 {
		return rest, ""
	}
	return rest[:idx], rest[idx+len("://"):]
}
