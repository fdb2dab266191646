package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/roach88/optimal/internal/loader"
	"github.com/roach88/optimal/internal/term"
)

// FromModule converts a loaded module into a record. Definitions are
// stored in printed form under their qualified names.
func FromModule(m *loader.Module) ModuleRecord {
	defs := make(map[string]string, len(m.Sources))
	for _, name := range m.Names() {
		q := m.Qualified(name)
		defs[q] = term.Show(m.Defs[q])
	}
	imports := make([]ImportRef, len(m.Imports))
	for i, imp := range m.Imports {
		imports[i] = ImportRef{Name: imp, Hash: m.Deps[imp].Hash}
	}
	return ModuleRecord{
		Hash:    m.Hash,
		Name:    m.Name,
		Source:  m.Source(),
		Defs:    defs,
		Imports: imports,
	}
}

// SaveModuleTree saves m and everything it imports, imports first. It
// returns the ids ("name#hash") of the saved modules in save order.
func (s *Store) SaveModuleTree(ctx context.Context, m *loader.Module) ([]string, error) {
	var order []*loader.Module
	seen := make(map[string]bool)
	var visit func(*loader.Module)
	visit = func(mod *loader.Module) {
		if seen[mod.Name] {
			return
		}
		seen[mod.Name] = true
		for _, imp := range mod.Imports {
			visit(mod.Deps[imp])
		}
		order = append(order, mod)
	}
	visit(m)

	ids := make([]string, 0, len(order))
	for _, mod := range order {
		rec := FromModule(mod)
		if err := s.SaveModule(ctx, rec); err != nil {
			return ids, err
		}
		ids = append(ids, rec.ID())
	}
	return ids, nil
}

// ModuleTree returns the module identified by ref followed by every
// module it imports, transitively, each once, sorted by name after the
// root.
func (s *Store) ModuleTree(ctx context.Context, ref string) ([]ModuleRecord, error) {
	root, err := s.LoadModule(ctx, ref)
	if err != nil {
		return nil, err
	}
	out := []ModuleRecord{root}
	seen := map[string]bool{root.Hash: true}
	queue := append([]ImportRef{}, root.Imports...)
	var deps []ModuleRecord
	for len(queue) > 0 {
		imp := queue[0]
		queue = queue[1:]
		if seen[imp.Hash] {
			continue
		}
		seen[imp.Hash] = true
		dep, err := s.LoadModule(ctx, imp.Name+"#"+imp.Hash)
		if err != nil {
			return nil, fmt.Errorf("module tree %s: %w", ref, err)
		}
		deps = append(deps, dep)
		queue = append(queue, dep.Imports...)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	return append(out, deps...), nil
}
