// Package rule holds the in-memory typed representation of a parsed
// DirSchema rule tree: a tagged variant rather than a dynamically typed
// dictionary (§9 "Rule as tagged variant"), with a dedicated conjunction
// node carrying an optional field per recognized key.
package rule

// TypeKind enumerates the concrete values the "type" primitive can take.
type TypeKind int

const (
	// TypeExists corresponds to the boolean "type: true"/"type: false" forms.
	TypeExists TypeKind = iota
	TypeFile
	TypeDir
)

// TypeConstraint is the resolved value of a "type" key: either an existence
// requirement (Exists true/false) or a file/dir classification requirement.
type TypeConstraint struct {
	Kind   TypeKind
	Exists bool // only meaningful when Kind == TypeExists
}

// SchemaRef is the resolved value of a "valid"/"validMeta" key: either an
// inline JSON Schema document, or a string reference resolved later by
// schemaresolve.Resolver.
type SchemaRef struct {
	Inline    map[string]any
	Reference string
	IsInline  bool
}

// Rule is either the trivial boolean true/false, or a conjunction node
// carrying at most one of each recognized key (enforced by the loader, not
// by this type -- a YAML/JSON mapping can only populate each field once by
// construction of the decoder).
type Rule struct {
	// IsBool/Bool represent a trivial rule; when IsBool is true no other
	// field is populated and evaluation bypasses straight to Emit (§4.5
	// step 1 and the "State machine" paragraph).
	IsBool bool
	Bool   bool

	// Matching
	Match      *string
	MatchStart *int
	MatchStop  *int
	Rewrite    *string

	// Primitives
	Type      *TypeConstraint
	Valid     *SchemaRef
	ValidMeta *SchemaRef

	// Logical
	Not   *Rule
	AllOf []Rule
	AnyOf []Rule
	OneOf []Rule

	// Control. The loader stores a bare "then" (no "if") in Then as-is;
	// successor() is what folds it into the effective successor under the
	// legacy-naming compatibility shim (§9 "Legacy key naming").
	If   *Rule
	Then *Rule
	Else *Rule
	Next *Rule

	// Presentation
	Description string
	// Details defaults to true; nil means "not set" (true).
	Details *bool
}

// DetailsOrDefault returns Details' effective value, defaulting to true
// when unset.
func (r *Rule) DetailsOrDefault() bool {
	if r.Details == nil {
		return true
	}
	return *r.Details
}

// HasSuccessor reports whether this node has a successor rule to evaluate
// in §4.5 step 6, under the legacy-naming compatibility shim: if "if" is
// present, "then"/"else" are branches, not a successor; otherwise a bare
// "then" is synonymous with "next".
func (r *Rule) HasSuccessor() bool {
	return r.successor() != nil
}

// Successor returns the effective successor rule, or nil.
func (r *Rule) Successor() *Rule {
	return r.successor()
}

func (r *Rule) successor() *Rule {
	if r.Next != nil {
		return r.Next
	}
	if r.If == nil && r.Then != nil {
		return r.Then
	}
	return nil
}

// True and False are the canonical trivial rules.
func True() Rule  { return Rule{IsBool: true, Bool: true} }
func False() Rule { return Rule{IsBool: true, Bool: false} }
