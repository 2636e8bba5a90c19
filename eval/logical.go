package eval

import (
	"fmt"

	"github.com/dirschema/dirschema-go/match"
	"github.com/dirschema/dirschema-go/rule"
)

// evalLogical implements §4.5 step 5: not, allOf, anyOf, oneOf, if/then/else,
// evaluated in that fixed order against the current (post-match) state.
func (e *Evaluator) evalLogical(r *rule.Rule, path string, state match.State, hasMatched bool) ([]Child, bool, error) {
	var children []Child
	failed := false

	if r.Not != nil {
		inner, err := e.evaluate(r.Not, path, state, hasMatched)
		if err != nil {
			return nil, false, err
		}
		if inner == nil {
			children = append(children, Child{Key: "not", Report: &Report{Message: "negated rule unexpectedly succeeded"}})
			failed = true
		}
	}

	if r.AllOf != nil {
		for i := range r.AllOf {
			rep, err := e.evaluate(&r.AllOf[i], path, state, hasMatched)
			if err != nil {
				return nil, false, err
			}
			if rep != nil {
				children = append(children, Child{Key: fmt.Sprintf("allOf[%d]", i), Report: rep})
				failed = true
				break // allOf short-circuits on first failure
			}
		}
	}

	if r.AnyOf != nil && len(r.AnyOf) > 0 {
		var misses []Child
		satisfied := false
		for i := range r.AnyOf {
			rep, err := e.evaluate(&r.AnyOf[i], path, state, hasMatched)
			if err != nil {
				return nil, false, err
			}
			if rep == nil {
				satisfied = true
				break // anyOf short-circuits on first success
			}
			misses = append(misses, Child{Key: fmt.Sprintf("anyOf[%d]", i), Report: rep})
		}
		if !satisfied {
			children = append(children, misses...)
			failed = true
		}
	}

	if r.OneOf != nil && len(r.OneOf) > 0 {
		var misses []Child
		successes := 0
		for i := range r.OneOf {
			rep, err := e.evaluate(&r.OneOf[i], path, state, hasMatched)
			if err != nil {
				return nil, false, err
			}
			if rep == nil {
				successes++
			} else {
				misses = append(misses, Child{Key: fmt.Sprintf("oneOf[%d]", i), Report: rep})
			}
		}
		if successes != 1 {
			children = append(children, misses...)
			failed = true
		}
	}

	if r.If != nil {
		ifReport, err := e.evaluate(r.If, path, state, hasMatched)
		if err != nil {
			return nil, false, err
		}
		// The if rule's own failure is never reported (§4.5 step 5).
		branch := r.Then
		key := "then"
		if ifReport != nil {
			branch = r.Else
			key = "else"
		}
		if branch != nil {
			branchReport, err := e.evaluate(branch, path, state, hasMatched)
			if err != nil {
				return nil, false, err
			}
			if branchReport != nil {
				children = append(children, Child{Key: key, Report: branchReport})
				failed = true
			}
		}
	}

	return children, failed, nil
}
