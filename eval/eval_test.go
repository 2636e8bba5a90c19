package eval

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dirschema/dirschema-go/jsonvalidator"
	"github.com/dirschema/dirschema-go/match"
	"github.com/dirschema/dirschema-go/metaconv"
	"github.com/dirschema/dirschema-go/rule"
	"github.com/dirschema/dirschema-go/schemaresolve"
)

// fakeAdapter is a minimal in-memory treeadapter.Adapter for exercising the
// Evaluator without a real filesystem or archive.
type fakeAdapter struct {
	files map[string]bool // path -> isDir
	json  map[string]any
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{files: make(map[string]bool), json: make(map[string]any)}
}

func (f *fakeAdapter) addFile(path string) { f.files[path] = false }
func (f *fakeAdapter) addDir(path string)  { f.files[path] = true }
func (f *fakeAdapter) addJSON(path string, v any) {
	f.files[path] = false
	f.json[path] = v
}

func (f *fakeAdapter) Enumerate() ([]string, error) {
	out := make([]string, 0, len(f.files))
	for p := range f.files {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeAdapter) Exists(path string) bool { _, ok := f.files[path]; return ok }
func (f *fakeAdapter) IsFile(path string) bool { isDir, ok := f.files[path]; return ok && !isDir }
func (f *fakeAdapter) IsDir(path string) bool  { isDir, ok := f.files[path]; return ok && isDir }

func (f *fakeAdapter) LoadJSON(path string) (any, error) {
	v, ok := f.json[path]
	if !ok {
		return nil, fmt.Errorf("fakeAdapter: %s not found or not JSON", path)
	}
	return v, nil
}

func newEvaluator(adapter *fakeAdapter) *Evaluator {
	return New(adapter, metaconv.Default(), schemaresolve.New(schemaresolve.Options{}), jsonvalidator.New())
}

// Scenario 1: type gating + missing companion.
func TestScenarioTypeGatingMissingCompanion(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.addDir("img")
	adapter.addFile("img/a.jpg")
	adapter.addJSON("img/a.jpg_meta.json", map[string]any{})
	adapter.addFile("img/b.txt")

	e := newEvaluator(adapter)
	r := mustParse(t, `
match: "img/[^/]+"
type: file
validMeta:
  type: object
`)
	_, err := e.Prepare(&r)
	require.NoError(t, err)

	repA, err := e.Evaluate(&r, "img/a.jpg", match.Initial("img/a.jpg"))
	require.NoError(t, err)
	require.Nil(t, repA)

	repB, err := e.Evaluate(&r, "img/b.txt", match.Initial("img/b.txt"))
	require.NoError(t, err)
	require.NotNil(t, repB)
	require.Len(t, repB.Children, 1)
	require.Equal(t, "validMeta", repB.Children[0].Key)
	require.Equal(t, "missing companion img/b.txt_meta.json", repB.Children[0].Report.Message)

	repDir, err := e.Evaluate(&r, "img", match.Initial("img"))
	require.NoError(t, err)
	require.Nil(t, repDir) // "img" itself does not match "img/[^/]+"
}

// Scenario 2: short-circuit with rewrite.
func TestScenarioRewriteSuccessor(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.addFile("data/x.csv")
	adapter.addFile("data/x.csv.meta")

	e := newEvaluator(adapter)
	r := mustParse(t, `
match: "(.*)\\.csv"
rewrite: "\\1.csv.meta"
next:
  type: file
`)
	_, err := e.Prepare(&r)
	require.NoError(t, err)

	rep, err := e.Evaluate(&r, "data/x.csv", match.Initial("data/x.csv"))
	require.NoError(t, err)
	require.Nil(t, rep)
}

// Scenario 3: oneOf exactness.
func TestScenarioOneOfExactness(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.addFile("a")

	e := newEvaluator(adapter)
	r := mustParse(t, `
oneOf:
  - type: file
  - type: dir
`)
	_, err := e.Prepare(&r)
	require.NoError(t, err)

	repOK, err := e.Evaluate(&r, "a", match.Initial("a"))
	require.NoError(t, err)
	require.Nil(t, repOK)

	repMissing, err := e.Evaluate(&r, "missing", match.Initial("missing"))
	require.NoError(t, err)
	require.NotNil(t, repMissing)
	require.Len(t, repMissing.Children, 2)
	require.Equal(t, "oneOf[0]", repMissing.Children[0].Key)
	require.Equal(t, "oneOf[1]", repMissing.Children[1].Key)
}

// Scenario 4: slice window.
func TestScenarioSliceWindow(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.addFile("a/b/c/d")

	e := newEvaluator(adapter)
	r := mustParse(t, `
matchStart: 1
matchStop: -1
match: "b/c"
`)
	_, err := e.Prepare(&r)
	require.NoError(t, err)

	rep, err := e.Evaluate(&r, "a/b/c/d", match.Initial("a/b/c/d"))
	require.NoError(t, err)
	require.Nil(t, rep)
}

// Scenario 5: if/then/else, if's own failure never reported.
func TestScenarioIfThenElse(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.addDir("docs")

	e := newEvaluator(adapter)
	r := mustParse(t, `
if:
  type: file
then:
  validMeta:
    type: object
else: true
`)
	_, err := e.Prepare(&r)
	require.NoError(t, err)

	rep, err := e.Evaluate(&r, "docs", match.Initial("docs"))
	require.NoError(t, err)
	require.Nil(t, rep)
}

// Scenario 6: description override drops child detail.
func TestScenarioDescriptionOverride(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.addFile("x.jpg")

	e := newEvaluator(adapter)
	r := mustParse(t, `
allOf:
  - type: file
  - validMeta:
      type: object
description: "jpg needs metadata"
`)
	_, err := e.Prepare(&r)
	require.NoError(t, err)

	rep, err := e.Evaluate(&r, "x.jpg", match.Initial("x.jpg"))
	require.NoError(t, err)
	require.NotNil(t, rep)
	require.Equal(t, "jpg needs metadata", rep.Message)
	require.Empty(t, rep.Children)
}

func TestDetailsFalseDropsChildren(t *testing.T) {
	adapter := newFakeAdapter()

	e := newEvaluator(adapter)
	r := mustParse(t, `
allOf:
  - type: file
details: false
`)
	_, err := e.Prepare(&r)
	require.NoError(t, err)

	rep, err := e.Evaluate(&r, "missing", match.Initial("missing"))
	require.NoError(t, err)
	require.NotNil(t, rep)
	require.Empty(t, rep.Children)
	require.NotEmpty(t, rep.Message)
}

func TestNotInvertsResult(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.addFile("a")

	e := newEvaluator(adapter)
	r := mustParse(t, `
not:
  type: dir
`)
	_, err := e.Prepare(&r)
	require.NoError(t, err)

	rep, err := e.Evaluate(&r, "a", match.Initial("a"))
	require.NoError(t, err)
	require.Nil(t, rep)

	adapter.addDir("b")
	rep2, err := e.Evaluate(&r, "b", match.Initial("b"))
	require.NoError(t, err)
	require.NotNil(t, rep2)
}

func TestAllOfShortCircuitsOnFirstFailure(t *testing.T) {
	adapter := newFakeAdapter()

	e := newEvaluator(adapter)
	r := mustParse(t, `
allOf:
  - type: file
  - type: dir
`)
	_, err := e.Prepare(&r)
	require.NoError(t, err)

	rep, err := e.Evaluate(&r, "missing", match.Initial("missing"))
	require.NoError(t, err)
	require.NotNil(t, rep)
	require.Len(t, rep.Children, 1)
	require.Equal(t, "allOf[0]", rep.Children[0].Key)
}

func TestEmptyAllOfAnyOfOneOfAreSatisfied(t *testing.T) {
	adapter := newFakeAdapter()
	e := newEvaluator(adapter)

	for _, doc := range []string{"allOf: []", "anyOf: []", "oneOf: []"} {
		r := mustParse(t, doc)
		_, err := e.Prepare(&r)
		require.NoError(t, err)
		rep, err := e.Evaluate(&r, "anything", match.Initial("anything"))
		require.NoError(t, err)
		require.Nil(t, rep, "doc %q should be satisfied", doc)
	}
}

func TestMatchMissApplicabilityIsSuccess(t *testing.T) {
	adapter := newFakeAdapter()
	e := newEvaluator(adapter)
	r := mustParse(t, `
match: "nope"
type: file
`)
	_, err := e.Prepare(&r)
	require.NoError(t, err)

	rep, err := e.Evaluate(&r, "anything", match.Initial("anything"))
	require.NoError(t, err)
	require.Nil(t, rep)
}

func TestSchemaResolutionFailureIsPrimitiveFailureNotError(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.addJSON("x.json", map[string]any{})
	e := newEvaluator(adapter)
	r := mustParse(t, `
valid: "v#missing-plugin://arg"
`)
	_, err := e.Prepare(&r)
	require.NoError(t, err)

	rep, err := e.Evaluate(&r, "x.json", match.Initial("x.json"))
	require.NoError(t, err)
	require.NotNil(t, rep)
}

func TestPrepareRejectsInvalidRegex(t *testing.T) {
	adapter := newFakeAdapter()
	e := newEvaluator(adapter)
	r := mustParse(t, `match: "(["`)
	_, err := e.Prepare(&r)
	require.Error(t, err)
}

func TestPrepareWarnsOnInertRewrite(t *testing.T) {
	adapter := newFakeAdapter()
	e := newEvaluator(adapter)
	r := mustParse(t, `
match: ".*"
rewrite: "\\1"
`)
	warnings, err := e.Prepare(&r)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
}

func mustParse(t *testing.T, doc string) rule.Rule {
	t.Helper()
	r, err := rule.Parse([]byte(doc))
	require.NoError(t, err)
	return r
}
