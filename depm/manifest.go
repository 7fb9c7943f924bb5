package depm

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"sable/ast"
	"sable/envs"
	"sable/report"
)

// ManifestName is the file name a unit manifest is stored under inside a
// library directory.
const ManifestName = "sable-units.toml"

// tomlManifest represents a library manifest as it is encoded in TOML.
type tomlManifest struct {
	Name  string     `toml:"name"`
	Units []tomlUnit `toml:"units"`
}

// tomlUnit represents one unit entry of the manifest.
type tomlUnit struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
	Path string `toml:"path"`
}

// Manifest lists the compilation units of a library and the source file
// each one lives in.
type Manifest struct {
	Name  string
	Units []ManifestUnit
}

// ManifestUnit maps one (unit name, kind) pair to a source file relative to
// the library directory.
type ManifestUnit struct {
	Name string
	Kind UnitKind
	Path string
}

// LoadManifest loads and validates the manifest of the library directory at
// `abspath`.  It returns the deserialized manifest and a success boolean.
func LoadManifest(abspath string) (*Manifest, bool) {
	f, err := os.Open(filepath.Join(abspath, ManifestName))
	if err != nil {
		report.ReportFatal("unable to open unit manifest at `%s`: %s", abspath, err.Error())
		return nil, false
	}
	defer f.Close()

	buff, err := io.ReadAll(f)
	if err != nil {
		report.ReportFatal("error reading unit manifest at `%s`: %s", abspath, err.Error())
		return nil, false
	}

	tm := &tomlManifest{}
	if err := toml.Unmarshal(buff, tm); err != nil {
		report.ReportFatal("error parsing unit manifest at `%s`: %s", abspath, err.Error())
		return nil, false
	}

	m := &Manifest{Name: tm.Name}
	if !validateManifest(m, tm, abspath) {
		return nil, false
	}

	return m, true
}

// validateManifest checks the deserialized entries and moves them onto the
// returned manifest with names folded and kinds decoded.
func validateManifest(m *Manifest, tm *tomlManifest, abspath string) bool {
	if tm.Name == "" {
		report.ReportUnitError(fmt.Sprintf("<library at `%s`>", abspath), "missing library name")
		return false
	}

	seen := make(map[unitKey]bool, len(tm.Units))
	for _, tu := range tm.Units {
		if tu.Name == "" || tu.Path == "" {
			report.ReportUnitError(tm.Name, "manifest units need both a name and a path")
			return false
		}

		var kind UnitKind
		switch tu.Kind {
		case "spec", "specification", "":
			kind = Specification
		case "body":
			kind = Body
		default:
			report.ReportUnitError(envs.Fold(tu.Name), "unknown unit kind `%s`", tu.Kind)
			return false
		}

		key := unitKey{name: envs.Fold(tu.Name), kind: kind}
		if seen[key] {
			report.ReportUnitError(key.name, "duplicate manifest entry for the %s", kind)
			return false
		}
		seen[key] = true

		m.Units = append(m.Units, ManifestUnit{Name: key.name, Kind: kind, Path: tu.Path})
	}

	return true
}

// -----------------------------------------------------------------------------

// ParseFunc parses one source file into a unit tree.
type ParseFunc func(path string) (*ast.Node, error)

// ManifestLoader is a Loader backed by a manifest: unit names map to files
// under the library directory, parsed on demand by an injected parser.
type ManifestLoader struct {
	root  string
	parse ParseFunc
	files map[unitKey]string
}

// NewManifestLoader creates a loader over the library directory the
// manifest was read from.
func NewManifestLoader(m *Manifest, root string, parse ParseFunc) *ManifestLoader {
	files := make(map[unitKey]string, len(m.Units))
	for _, mu := range m.Units {
		files[unitKey{name: mu.Name, kind: mu.Kind}] = mu.Path
	}

	return &ManifestLoader{root: root, parse: parse, files: files}
}

// Load implements Loader.
func (l *ManifestLoader) Load(name string, kind UnitKind) (*ast.Node, string, error) {
	rel, ok := l.files[unitKey{name: envs.Fold(name), kind: kind}]
	if !ok {
		return nil, "", nil
	}

	path := filepath.Join(l.root, rel)
	root, err := l.parse(path)
	if err != nil {
		return nil, path, fmt.Errorf("parsing `%s`: %w", path, err)
	}

	return root, path, nil
}
