package driver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dirschema/dirschema-go/eval"
	"github.com/dirschema/dirschema-go/jsonvalidator"
	"github.com/dirschema/dirschema-go/metaconv"
	"github.com/dirschema/dirschema-go/rule"
	"github.com/dirschema/dirschema-go/schemaresolve"
)

// orderedAdapter is a minimal in-memory treeadapter.Adapter that preserves
// insertion order in Enumerate, so Driver tests can assert on Result.Paths
// order without depending on map iteration order.
type orderedAdapter struct {
	order []string
	dirs  map[string]bool
	json  map[string]any
}

func newOrderedAdapter() *orderedAdapter {
	return &orderedAdapter{dirs: make(map[string]bool), json: make(map[string]any)}
}

func (a *orderedAdapter) addFile(path string) {
	a.order = append(a.order, path)
	a.dirs[path] = false
}

func (a *orderedAdapter) addDir(path string) {
	a.order = append(a.order, path)
	a.dirs[path] = true
}

func (a *orderedAdapter) addJSON(path string, v any) {
	a.addFile(path)
	a.json[path] = v
}

func (a *orderedAdapter) Enumerate() ([]string, error) { return a.order, nil }
func (a *orderedAdapter) Exists(path string) bool      { _, ok := a.dirs[path]; return ok }
func (a *orderedAdapter) IsFile(path string) bool      { isDir, ok := a.dirs[path]; return ok && !isDir }
func (a *orderedAdapter) IsDir(path string) bool       { isDir, ok := a.dirs[path]; return ok && isDir }

func (a *orderedAdapter) LoadJSON(path string) (any, error) {
	v, ok := a.json[path]
	if !ok {
		return nil, fmt.Errorf("orderedAdapter: %s not found or not JSON", path)
	}
	return v, nil
}

func mustParseRule(t *testing.T, doc string) rule.Rule {
	t.Helper()
	r, err := rule.Parse([]byte(doc))
	require.NoError(t, err)
	return r
}

func TestDriverExcludesCompanionsAndAssemblesReports(t *testing.T) {
	adapter := newOrderedAdapter()
	adapter.addDir("")
	adapter.addDir("img")
	adapter.addFile("img/a.jpg")
	adapter.addJSON("img/a.jpg_meta.json", map[string]any{})
	adapter.addFile("img/b.txt")
	adapter.addJSON("img/b.txt_meta.json", map[string]any{})

	r := mustParseRule(t, `
match: "img/[^/]+"
type: file
validMeta:
  type: object
`)

	convention := metaconv.Default()
	evaluator := eval.New(adapter, convention, schemaresolve.New(schemaresolve.Options{}), jsonvalidator.New())
	d := New(evaluator, adapter, convention, nil)

	result, err := d.Run(&r)
	require.NoError(t, err)

	require.NotContains(t, result.Paths, "img/a.jpg_meta.json")
	require.NotContains(t, result.Paths, "img/b.txt_meta.json")
	require.Contains(t, result.Paths, "img/a.jpg")
	require.Contains(t, result.Paths, "img/b.txt")

	require.NotContains(t, result.Reports, "img/a.jpg")
	require.NotEmpty(t, result.RunID)
}

func TestDriverPropagatesPrepareError(t *testing.T) {
	adapter := newOrderedAdapter()
	r := mustParseRule(t, `match: "("`)

	convention := metaconv.Default()
	evaluator := eval.New(adapter, convention, schemaresolve.New(schemaresolve.Options{}), jsonvalidator.New())
	d := New(evaluator, adapter, convention, nil)

	_, err := d.Run(&r)
	require.Error(t, err)
}
