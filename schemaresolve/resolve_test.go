package schemaresolve

import (
	"testing"

	"github.com/dirschema/dirschema-go/rule"
	"github.com/stretchr/testify/require"
)

func TestResolveInline(t *testing.T) {
	r := New(Options{})
	resolved, err := r.Resolve(rule.SchemaRef{Inline: map[string]any{"type": "object"}, IsInline: true})
	require.NoError(t, err)
	require.Equal(t, KindInline, resolved.Kind)
}

func TestResolveSchemes(t *testing.T) {
	r := New(Options{LocalBase: "/docs", WorkingDir: "/work"})

	cases := []struct {
		in       string
		wantKind Kind
		wantURI  string
	}{
		{"https://example.com/s.json", KindRemote, "https://example.com/s.json"},
		{"file:///tmp/s.json", KindLocalFile, "/tmp/s.json"},
		{"local://sub/s.json", KindLocalFile, "/docs/sub/s.json"},
		{"cwd://sub/s.json", KindLocalFile, "/work/sub/s.json"},
		{"sub/s.json", KindLocalFile, "/work/sub/s.json"},
	}
	for _, c := range cases {
		resolved, err := r.Resolve(rule.SchemaRef{Reference: c.in})
		require.NoError(t, err, c.in)
		require.Equal(t, c.wantKind, resolved.Kind, c.in)
		require.Equal(t, c.wantURI, resolved.URI, c.in)
	}
}

func TestRelativeBaseOverride(t *testing.T) {
	r := New(Options{LocalBase: "/docs", WorkingDir: "/work", RelativeBaseIsLocal: true})
	resolved, err := r.Resolve(rule.SchemaRef{Reference: "sub/s.json"})
	require.NoError(t, err)
	require.Equal(t, "/docs/sub/s.json", resolved.URI)
}

func TestPluginURI(t *testing.T) {
	r := New(Options{})
	resolved, err := r.Resolve(rule.SchemaRef{Reference: "v#nonempty://some-arg"})
	require.NoError(t, err)
	require.Equal(t, KindPlugin, resolved.Kind)
	require.Equal(t, "nonempty", resolved.PluginName)
	require.Equal(t, "some-arg", resolved.Argument)
}

func TestResolveNonPluginRejectsPlugin(t *testing.T) {
	r := New(Options{})
	_, err := r.ResolveNonPlugin(rule.SchemaRef{Reference: "v#nonempty://arg"})
	require.Error(t, err)
}
