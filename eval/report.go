package eval

import "strings"

// Report is one node of the error-report tree mirroring the rule tree
// (§3 ErrorReport). A nil *Report denotes success -- the "absence of a
// report" convention from the Data Model section.
type Report struct {
	Message  string
	Children []Child
}

// Child is one failing sub-rule recorded under its originating key, e.g.
// "type", "validMeta", "allOf[1]", "not", "then", "next".
type Child struct {
	Key    string
	Report *Report
}

// assembleReport builds this node's Report from its stage-level children,
// applying the description/details presentation rules of §4.5 step 7 and
// §7's propagation policy.
func assembleReport(description string, detailsOn bool, children []Child) *Report {
	if len(children) == 0 {
		return nil
	}
	if description != "" {
		// "description replaces all direct-child default messages" --
		// scenario 6 expects exactly the description message and no
		// nested detail.
		return &Report{Message: description}
	}
	if !detailsOn {
		return &Report{Message: summarizeKeys(children)}
	}
	return &Report{Children: children}
}

func summarizeKeys(children []Child) string {
	keys := make([]string, 0, len(children))
	for _, c := range children {
		keys = append(keys, c.Key)
	}
	return "failed: " + strings.Join(keys, ", ")
}
