package nonempty

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dirschema/dirschema-go/jsonvalidator"
)

type fakeAdapter struct {
	files map[string]any
}

func (f *fakeAdapter) Enumerate() ([]string, error) { return nil, nil }
func (f *fakeAdapter) Exists(path string) bool       { _, ok := f.files[path]; return ok }
func (f *fakeAdapter) IsFile(path string) bool       { return f.Exists(path) }
func (f *fakeAdapter) IsDir(path string) bool        { return false }
func (f *fakeAdapter) LoadJSON(path string) (any, error) {
	return f.files[path], nil
}

func TestPluginRejectsEmptyObject(t *testing.T) {
	a := &fakeAdapter{files: map[string]any{"meta.json": map[string]any{}}}
	require.Error(t, Plugin("meta.json", "", a))
}

func TestPluginAcceptsNonEmptyObject(t *testing.T) {
	a := &fakeAdapter{files: map[string]any{"meta.json": map[string]any{"k": "v"}}}
	require.NoError(t, Plugin("meta.json", "", a))
}

func TestPluginRejectsMissingPath(t *testing.T) {
	a := &fakeAdapter{files: map[string]any{}}
	require.Error(t, Plugin("missing.json", "", a))
}

func TestRegisterWiresPluginByName(t *testing.T) {
	v := jsonvalidator.New()
	Register(v)
	a := &fakeAdapter{files: map[string]any{"meta.json": []any{1}}}
	require.NoError(t, v.InvokePlugin(Name, "meta.json", "", a))
}
