package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/optimal/internal/ir"
	"github.com/roach88/optimal/internal/term"
)

// Ext is the file extension of module files.
const Ext = ".cue"

// DefaultName is the definition evaluated when a target names only a
// module.
const DefaultName = "main"

var moduleName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Module is a loaded module together with everything it imports.
type Module struct {
	// Name is the module name, the file name without extension.
	Name string
	// Path is the file the module was read from.
	Path string
	// Imports lists imported module names in file order.
	Imports []string
	// Sources maps each local definition name to its source text.
	Sources map[string]string
	// Defs holds the parsed definitions of this module and of every module
	// it imports, transitively, under qualified names.
	Defs term.Defs
	// Hash is the module's content address. It covers the printed
	// definitions and the hashes of the imports.
	Hash string
	// Deps maps every transitively imported module name to its module.
	Deps map[string]*Module
}

// Qualified returns the qualified name of local definition name.
func (m *Module) Qualified(name string) string {
	return m.Name + "/" + name
}

// Names returns the local definition names, sorted.
func (m *Module) Names() []string {
	names := make([]string, 0, len(m.Sources))
	for name := range m.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolver resolves identifiers written inside this module.
func (m *Module) Resolver() term.Resolver {
	return func(name string) (string, bool) {
		if _, ok := m.Sources[name]; ok {
			return m.Qualified(name), true
		}
		if _, ok := m.Defs[name]; ok && strings.Contains(name, "/") {
			return name, true
		}
		return "", false
	}
}

// Source renders the module back as a CUE file.
func (m *Module) Source() string {
	var b strings.Builder
	if len(m.Imports) > 0 {
		quoted := make([]string, len(m.Imports))
		for i, imp := range m.Imports {
			quoted[i] = fmt.Sprintf("%q", imp)
		}
		fmt.Fprintf(&b, "imports: [%s]\n", strings.Join(quoted, ", "))
	}
	b.WriteString("defs: {\n")
	for _, name := range m.Names() {
		fmt.Fprintf(&b, "\t%q: %q\n", name, m.Sources[name])
	}
	b.WriteString("}\n")
	return b.String()
}

// ParseTarget splits "module/name" into its parts. A bare module name
// targets DefaultName.
func ParseTarget(target string) (module, name string) {
	if i := strings.Index(target, "/"); i >= 0 {
		return target[:i], target[i+1:]
	}
	return target, DefaultName
}

// Loader reads modules from a directory and caches them by name.
type Loader struct {
	dir     string
	ctx     *cue.Context
	modules map[string]*Module
}

// New creates a loader over dir.
func New(dir string) *Loader {
	return &Loader{
		dir:     dir,
		ctx:     cuecontext.New(),
		modules: make(map[string]*Module),
	}
}

// Load reads module name from dir. It is shorthand for New(dir).Load(name).
func Load(dir, name string) (*Module, error) {
	return New(dir).Load(name)
}

// Load reads module name and its imports.
func (l *Loader) Load(name string) (*Module, error) {
	return l.load(name, nil)
}

func (l *Loader) load(name string, visiting []string) (*Module, error) {
	if m, ok := l.modules[name]; ok {
		return m, nil
	}
	for i, v := range visiting {
		if v == name {
			cycle := append(append([]string{}, visiting[i:]...), name)
			return nil, &ImportCycleError{Path: cycle}
		}
	}
	if !moduleName.MatchString(name) {
		return nil, &CompileError{Module: name, Field: "name", Message: fmt.Sprintf("invalid module name %q", name)}
	}

	path := filepath.Join(l.dir, name+Ext)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Module: name, Path: path}
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	insts := load.Instances([]string{name + Ext}, &load.Config{Dir: l.dir})
	if len(insts) == 0 {
		return nil, &CompileError{Module: name, Field: "cue", Message: "no CUE instance loaded"}
	}
	if err := insts[0].Err; err != nil {
		return nil, formatCUEError(name, err)
	}
	v := l.ctx.BuildInstance(insts[0])
	if err := v.Err(); err != nil {
		return nil, formatCUEError(name, err)
	}

	decl, err := decode(name, v)
	if err != nil {
		return nil, err
	}
	decl.Path = path

	visiting = append(visiting, name)
	deps := make(map[string]*Module)
	var importHashes []string
	for _, imp := range decl.Imports {
		dep, err := l.load(imp, visiting)
		if err != nil {
			return nil, err
		}
		deps[imp] = dep
		for k, d := range dep.Deps {
			deps[k] = d
		}
		importHashes = append(importHashes, dep.Hash)
	}

	m, err := build(decl, deps, importHashes)
	if err != nil {
		return nil, err
	}
	l.modules[name] = m
	return m, nil
}

// declaration is a module file before its definitions are parsed.
type declaration struct {
	Name      string
	Path      string
	Imports   []string
	Sources   map[string]string
	positions map[string]cue.Value
}

// decode reads the imports and defs fields of a built CUE value.
func decode(name string, v cue.Value) (*declaration, error) {
	decl := &declaration{
		Name:      name,
		Sources:   make(map[string]string),
		positions: make(map[string]cue.Value),
	}

	if iv := v.LookupPath(cue.ParsePath("imports")); iv.Exists() {
		list, err := iv.List()
		if err != nil {
			return nil, formatCUEError(name, err)
		}
		for list.Next() {
			imp, err := list.Value().String()
			if err != nil {
				return nil, &CompileError{Module: name, Field: "imports", Message: "imports must be strings", Pos: list.Value().Pos()}
			}
			decl.Imports = append(decl.Imports, imp)
		}
	}

	dv := v.LookupPath(cue.ParsePath("defs"))
	if !dv.Exists() {
		return nil, &CompileError{Module: name, Field: "defs", Message: "defs is required", Pos: v.Pos()}
	}
	iter, err := dv.Fields()
	if err != nil {
		return nil, formatCUEError(name, err)
	}
	for iter.Next() {
		def := iter.Selector().Unquoted()
		src, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Module:  name,
				Field:   "defs." + def,
				Message: "definition must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		decl.Sources[def] = src
		decl.positions[def] = iter.Value()
	}
	return decl, nil
}

// build parses every definition of decl against its own names and the
// already loaded imports.
func build(decl *declaration, deps map[string]*Module, importHashes []string) (*Module, error) {
	m := &Module{
		Name:    decl.Name,
		Path:    decl.Path,
		Imports: decl.Imports,
		Sources: decl.Sources,
		Defs:    make(term.Defs),
		Deps:    deps,
	}
	for _, imp := range decl.Imports {
		for k, t := range deps[imp].Defs {
			m.Defs[k] = t
		}
	}
	for name := range decl.Sources {
		m.Defs[m.Qualified(name)] = nil
	}

	// only direct imports are visible by qualified name
	visible := make(map[string]bool, len(decl.Imports))
	for _, imp := range decl.Imports {
		visible[imp] = true
	}
	resolve := func(ident string) (string, bool) {
		if _, ok := decl.Sources[ident]; ok {
			return m.Qualified(ident), true
		}
		mod, _, ok := strings.Cut(ident, "/")
		if !ok {
			return "", false
		}
		if mod == decl.Name {
			return "", false
		}
		if _, exists := m.Defs[ident]; exists && visible[mod] {
			return ident, true
		}
		return "", false
	}

	printed := make(map[string]string, len(decl.Sources))
	for _, name := range m.Names() {
		t, err := term.Parse(decl.Sources[name], resolve)
		if err != nil {
			return nil, &CompileError{
				Module:  decl.Name,
				Field:   "defs." + name,
				Message: err.Error(),
				Pos:     decl.positions[name].Pos(),
			}
		}
		m.Defs[m.Qualified(name)] = t
		printed[m.Qualified(name)] = term.Show(t)
	}

	hash, err := ir.ModuleHash(decl.Name, importHashes, printed)
	if err != nil {
		return nil, err
	}
	m.Hash = hash
	return m, nil
}
