package depm_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sable/ast"
	"sable/depm"
	"sable/report"
	"sable/testutil"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	report.InitReporter(report.LogLevelSilent)

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, depm.ManifestName), []byte(content), 0o644)
	require.NoError(t, err)

	return dir
}

func TestLoadManifest(t *testing.T) {
	dir := writeManifest(t, `
name = "physics"

[[units]]
name = "Vectors"
path = "vectors.ads"

[[units]]
name = "vectors"
kind = "body"
path = "vectors.adb"

[[units]]
name = "Units.SI"
kind = "spec"
path = "units-si.ads"
`)

	m, ok := depm.LoadManifest(dir)
	require.True(t, ok)
	assert.Equal(t, "physics", m.Name)
	require.Len(t, m.Units, 3)

	assert.Equal(t, depm.ManifestUnit{Name: "vectors", Kind: depm.Specification, Path: "vectors.ads"}, m.Units[0])
	assert.Equal(t, depm.ManifestUnit{Name: "vectors", Kind: depm.Body, Path: "vectors.adb"}, m.Units[1])
	assert.Equal(t, depm.ManifestUnit{Name: "units.si", Kind: depm.Specification, Path: "units-si.ads"}, m.Units[2])
}

func TestLoadManifestRejectsMissingLibraryName(t *testing.T) {
	dir := writeManifest(t, `
[[units]]
name = "vectors"
path = "vectors.ads"
`)

	m, ok := depm.LoadManifest(dir)
	assert.False(t, ok)
	assert.Nil(t, m)
	assert.Equal(t, 1, report.ErrorCount())
}

func TestLoadManifestRejectsIncompleteUnit(t *testing.T) {
	dir := writeManifest(t, `
name = "physics"

[[units]]
name = "vectors"
`)

	_, ok := depm.LoadManifest(dir)
	assert.False(t, ok)
	assert.Equal(t, 1, report.ErrorCount())
}

func TestLoadManifestRejectsUnknownKind(t *testing.T) {
	dir := writeManifest(t, `
name = "physics"

[[units]]
name = "vectors"
kind = "generic"
path = "vectors.ads"
`)

	_, ok := depm.LoadManifest(dir)
	assert.False(t, ok)
	assert.Equal(t, 1, report.ErrorCount())
}

func TestLoadManifestRejectsDuplicateEntries(t *testing.T) {
	dir := writeManifest(t, `
name = "physics"

[[units]]
name = "Vectors"
path = "vectors.ads"

[[units]]
name = "VECTORS"
kind = "spec"
path = "vectors2.ads"
`)

	_, ok := depm.LoadManifest(dir)
	assert.False(t, ok)
	assert.Equal(t, 1, report.ErrorCount())
}

func TestManifestLoaderLoadsThroughParser(t *testing.T) {
	m := &depm.Manifest{Name: "lib", Units: []depm.ManifestUnit{
		{Name: "counters", Kind: depm.Specification, Path: "counters.ads"},
	}}

	tree := testutil.Unit(testutil.Package("Counters"))
	var parsed []string
	l := depm.NewManifestLoader(m, filepath.Join("lib", "src"), func(path string) (*ast.Node, error) {
		parsed = append(parsed, path)
		return tree, nil
	})

	root, path, err := l.Load("Counters", depm.Specification)
	require.NoError(t, err)
	assert.Same(t, tree, root)
	assert.Equal(t, filepath.Join("lib", "src", "counters.ads"), path)
	assert.Len(t, parsed, 1)

	// A unit the manifest does not list is a plain miss, not an error.
	root, path, err = l.Load("counters", depm.Body)
	require.NoError(t, err)
	assert.Nil(t, root)
	assert.Empty(t, path)
	assert.Len(t, parsed, 1, "misses never reach the parser")
}

func TestManifestLoaderWrapsParseErrors(t *testing.T) {
	report.InitReporter(report.LogLevelSilent)

	m := &depm.Manifest{Name: "lib", Units: []depm.ManifestUnit{
		{Name: "broken", Kind: depm.Specification, Path: "broken.ads"},
	}}

	l := depm.NewManifestLoader(m, "src", func(path string) (*ast.Node, error) {
		return nil, errors.New("unexpected token")
	})

	root, path, err := l.Load("broken", depm.Specification)
	assert.Nil(t, root)
	assert.Equal(t, filepath.Join("src", "broken.ads"), path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unexpected token")

	// The graph degrades on the error instead of failing the run.
	g := depm.NewGraph(l)
	u, ok := g.EnsureUnit("broken", depm.Specification)
	assert.False(t, ok)
	assert.Nil(t, u)
	assert.Equal(t, 1, report.ErrorCount())
}

func TestGraphOverManifestLoader(t *testing.T) {
	dir := writeManifest(t, `
name = "physics"

[[units]]
name = "vectors"
path = "vectors.ads"
`)

	m, ok := depm.LoadManifest(dir)
	require.True(t, ok)

	mass := testutil.Object("Mass", "Float", nil)
	trees := map[string]*ast.Node{
		"vectors.ads": testutil.Unit(testutil.Package("Vectors", mass)),
	}

	l := depm.NewManifestLoader(m, dir, func(path string) (*ast.Node, error) {
		root, ok := trees[filepath.Base(path)]
		if !ok {
			return nil, errors.New("no such file")
		}

		return root, nil
	})

	g := depm.NewGraph(l)
	u, ok := g.EnsureUnit("Vectors", depm.Specification)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "vectors.ads"), u.Path)

	de, ok := g.DesignatedEnv(u.Decl)
	require.True(t, ok)
	require.Len(t, lookup(de, "mass"), 1)
}
