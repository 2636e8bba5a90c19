// Package eval implements the Evaluator (§4.5): the recursive interpreter
// that walks a rule.Rule tree against a single path, threading a
// match.State through regex matching, structural/schema primitives, logical
// composition, and rewrite-and-descend, producing an ErrorReport tree (here
// *Report) or nil for success.
package eval

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/dirschema/dirschema-go/jsonvalidator"
	"github.com/dirschema/dirschema-go/match"
	"github.com/dirschema/dirschema-go/metaconv"
	"github.com/dirschema/dirschema-go/pathnorm"
	"github.com/dirschema/dirschema-go/rule"
	"github.com/dirschema/dirschema-go/schemaresolve"
	"github.com/dirschema/dirschema-go/treeadapter"
)

// Evaluator owns the collaborators an evaluation run consults -- the tree
// adapter, the metadata convention, the schema resolver, and the JSON
// validator -- plus a regex cache memoized across every path in the run
// (§5 "Compiled regexes ... should be memoized inside the Evaluator across
// paths").
type Evaluator struct {
	Adapter    treeadapter.Adapter
	Convention metaconv.Convention
	Resolver   *schemaresolve.Resolver
	Validator  jsonvalidator.Validator

	mu      sync.Mutex
	regexes map[string]*regexp.Regexp
}

// New builds an Evaluator over the given collaborators.
func New(adapter treeadapter.Adapter, convention metaconv.Convention, resolver *schemaresolve.Resolver, validator jsonvalidator.Validator) *Evaluator {
	return &Evaluator{
		Adapter:    adapter,
		Convention: convention,
		Resolver:   resolver,
		Validator:  validator,
		regexes:    make(map[string]*regexp.Regexp),
	}
}

// Prepare walks the whole rule tree once before any path is evaluated,
// compiling every "match" pattern so a malformed pattern is a rule-document
// load-time failure (§7 "Rule-document invalid: ... aborts the whole run
// before any path is evaluated"), not a failure attributed to one path.
// It also collects lint warnings for a "rewrite" with no successor (§3).
func (e *Evaluator) Prepare(r *rule.Rule) (warnings []string, err error) {
	return e.prepare(r, warnings)
}

func (e *Evaluator) prepare(r *rule.Rule, warnings []string) ([]string, error) {
	if r == nil || r.IsBool {
		return warnings, nil
	}
	if r.Match != nil {
		if _, err := e.compileRegex(*r.Match); err != nil {
			return warnings, fmt.Errorf("eval: invalid \"match\" pattern %q: %w", *r.Match, err)
		}
	}
	if r.Rewrite != nil && !r.HasSuccessor() {
		warnings = append(warnings, fmt.Sprintf("rewrite: %q has no \"next\"/\"then\" successor and is semantically inert", *r.Rewrite))
	}

	var err error
	if r.Not != nil {
		if warnings, err = e.prepare(r.Not, warnings); err != nil {
			return warnings, err
		}
	}
	for i := range r.AllOf {
		if warnings, err = e.prepare(&r.AllOf[i], warnings); err != nil {
			return warnings, err
		}
	}
	for i := range r.AnyOf {
		if warnings, err = e.prepare(&r.AnyOf[i], warnings); err != nil {
			return warnings, err
		}
	}
	for i := range r.OneOf {
		if warnings, err = e.prepare(&r.OneOf[i], warnings); err != nil {
			return warnings, err
		}
	}
	if warnings, err = e.prepare(r.If, warnings); err != nil {
		return warnings, err
	}
	if warnings, err = e.prepare(r.Then, warnings); err != nil {
		return warnings, err
	}
	if warnings, err = e.prepare(r.Else, warnings); err != nil {
		return warnings, err
	}
	if warnings, err = e.prepare(r.Next, warnings); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// Evaluate is the public entry point, matching §4.5's
// "evaluate(rule, path, state) -> Option<ErrorReport>".
func (e *Evaluator) Evaluate(r *rule.Rule, path string, state match.State) (*Report, error) {
	return e.evaluate(r, path, state, false)
}

// evaluate is the recursive core. hasMatched tracks whether any ancestor
// node (including this call chain up to here) has already installed real
// regex captures, which rewrite's fallback-to-implicit-match rule (§4.5
// "Rewrite semantics") needs to distinguish from the root's synthetic
// whole-path capture.
func (e *Evaluator) evaluate(r *rule.Rule, path string, state match.State, hasMatched bool) (*Report, error) {
	// Step 1: trivial rule.
	if r.IsBool {
		if r.Bool {
			return nil, nil
		}
		return &Report{Message: "schema forbids this path"}, nil
	}

	// Step 2: slice resolution.
	segments := pathnorm.Split(path)
	start := state.Start
	if r.MatchStart != nil {
		start = *r.MatchStart
	}
	stop := state.Stop
	if r.MatchStop != nil {
		stop = *r.MatchStop
	}
	effStart, effStop := match.ResolveWindow(start, stop, len(segments))
	slice := pathnorm.Join(segments[effStart:effStop])

	// Step 3: match stage.
	captures := state.Captures
	if r.Match != nil {
		re, err := e.compileRegex(*r.Match)
		if err != nil {
			return nil, err
		}
		groups := re.FindStringSubmatch(slice)
		if groups == nil {
			// compileRegex anchors the pattern to \A...\z, so a nil result
			// here means no full match exists at all (not merely that the
			// leftmost-first match was short) -- applicability-miss: the
			// whole rule is inapplicable (§7).
			return nil, nil
		}
		captures = groups
		hasMatched = true
	}

	childState := match.State{Captures: captures, Start: start, Stop: stop}

	// Step 4: primitive stage. Evaluate all three, accumulating failures,
	// before deciding whether to abort ahead of the logical stage.
	var children []Child
	primitivesFailed := false
	if r.Type != nil {
		if rep := e.evalType(*r.Type, path); rep != nil {
			children = append(children, Child{Key: "type", Report: rep})
			primitivesFailed = true
		}
	}
	if r.Valid != nil {
		if rep := e.evalValid(*r.Valid, path); rep != nil {
			children = append(children, Child{Key: "valid", Report: rep})
			primitivesFailed = true
		}
	}
	if r.ValidMeta != nil {
		if rep := e.evalValidMeta(*r.ValidMeta, path); rep != nil {
			children = append(children, Child{Key: "validMeta", Report: rep})
			primitivesFailed = true
		}
	}
	if primitivesFailed {
		return assembleReport(r.Description, r.DetailsOrDefault(), children), nil
	}

	// Step 5: logical stage.
	logicalChildren, logicalFailed, err := e.evalLogical(r, path, childState, hasMatched)
	if err != nil {
		return nil, err
	}
	if logicalFailed {
		children = append(children, logicalChildren...)
		return assembleReport(r.Description, r.DetailsOrDefault(), children), nil
	}

	// Step 6: successor stage.
	if succ := r.Successor(); succ != nil {
		nextPath := path
		if r.Rewrite != nil {
			nextPath, err = e.rewritePath(segments, effStart, effStop, *r.Rewrite, slice, captures, hasMatched)
			if err != nil {
				return nil, err
			}
		}
		succReport, err := e.evaluate(succ, nextPath, childState, hasMatched)
		if err != nil {
			return nil, err
		}
		if succReport != nil {
			key := "then"
			if r.Next != nil {
				key = "next"
			}
			children = append(children, Child{Key: key, Report: succReport})
			return assembleReport(r.Description, r.DetailsOrDefault(), children), nil
		}
	}

	// Step 7: emit.
	return assembleReport(r.Description, r.DetailsOrDefault(), children), nil
}

// compileRegex compiles pattern anchored to the whole input (\A...\z)
// rather than relying on comparing the leftmost-first submatch's length to
// the slice length: Go's regexp uses leftmost-first (not POSIX
// leftmost-longest) semantics, so an ordered alternation like "v1|v1beta" or
// a lazy quantifier can produce a shorter leftmost-first match even though a
// full-span match exists, which a length comparison would wrongly treat as
// an applicability-miss. Anchoring forces the engine itself to find a match
// spanning the whole string, the true full-match §4.5 requires.
func (e *Evaluator) compileRegex(pattern string) (*regexp.Regexp, error) {
	e.mu.Lock()
	if re, ok := e.regexes[pattern]; ok {
		e.mu.Unlock()
		return re, nil
	}
	e.mu.Unlock()

	anchored := `\A(?:` + pattern + `)\z`
	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, fmt.Errorf("eval: compile pattern %q: %w", pattern, err)
	}

	e.mu.Lock()
	e.regexes[pattern] = re
	e.mu.Unlock()
	return re, nil
}
