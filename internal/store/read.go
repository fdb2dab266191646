package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// minPrefix is the shortest hash prefix LoadModule accepts.
const minPrefix = 6

// LoadModule returns the module identified by ref. ref is a hash, a hash
// prefix of at least six characters, or "name#hash" where hash may also
// be a prefix. Returns ErrNotFound or ErrAmbiguous.
func (s *Store) LoadModule(ctx context.Context, ref string) (ModuleRecord, error) {
	name, hash, qualified := strings.Cut(ref, "#")
	if !qualified {
		hash, name = name, ""
	}
	if len(hash) < minPrefix {
		return ModuleRecord{}, fmt.Errorf("load module %s: hash must have at least %d characters", ref, minPrefix)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, name, source, defs, seq
		FROM modules
		WHERE substr(hash, 1, length(?)) = ? AND (? = '' OR name = ?)
		ORDER BY seq ASC, hash COLLATE BINARY ASC
		LIMIT 2
	`, hash, hash, name, name)
	if err != nil {
		return ModuleRecord{}, fmt.Errorf("load module %s: %w", ref, err)
	}
	mods, err := scanModules(rows)
	if err != nil {
		return ModuleRecord{}, fmt.Errorf("load module %s: %w", ref, err)
	}
	switch len(mods) {
	case 0:
		return ModuleRecord{}, fmt.Errorf("load module %s: %w", ref, ErrNotFound)
	case 1:
	default:
		return ModuleRecord{}, fmt.Errorf("load module %s: %w", ref, ErrAmbiguous)
	}

	m := mods[0]
	m.Imports, err = s.readImports(ctx, m.Hash)
	if err != nil {
		return ModuleRecord{}, err
	}
	return m, nil
}

// CitedBy returns the modules that import hash directly, in save order.
// Returns an empty slice (not nil) when nothing cites it.
func (s *Store) CitedBy(ctx context.Context, hash string) ([]ModuleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT m.hash, m.name, m.source, m.defs, m.seq
		FROM modules m
		JOIN module_imports i ON i.hash = m.hash
		WHERE i.imported_hash = ?
		ORDER BY m.seq ASC, m.hash COLLATE BINARY ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("cited by %s: %w", hash, err)
	}
	mods, err := scanModules(rows)
	if err != nil {
		return nil, fmt.Errorf("cited by %s: %w", hash, err)
	}
	return mods, nil
}

// Modules lists every stored module with the given name, or all modules
// when name is empty, in save order.
func (s *Store) Modules(ctx context.Context, name string) ([]ModuleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, name, source, defs, seq
		FROM modules
		WHERE ? = '' OR name = ?
		ORDER BY seq ASC, hash COLLATE BINARY ASC
	`, name, name)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	mods, err := scanModules(rows)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return mods, nil
}

func (s *Store) readImports(ctx context.Context, hash string) ([]ImportRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, imported_hash
		FROM module_imports
		WHERE hash = ?
		ORDER BY position ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	imports := []ImportRef{}
	for rows.Next() {
		var imp ImportRef
		if err := rows.Scan(&imp.Name, &imp.Hash); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imports = append(imports, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}
	return imports, nil
}

// scanModules reads module rows and closes them.
func scanModules(rows *sql.Rows) ([]ModuleRecord, error) {
	defer rows.Close()

	mods := []ModuleRecord{}
	for rows.Next() {
		var m ModuleRecord
		var defsJSON string
		if err := rows.Scan(&m.Hash, &m.Name, &m.Source, &defsJSON, &m.Seq); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		defs, err := unmarshalDefs(defsJSON)
		if err != nil {
			return nil, err
		}
		m.Defs = defs
		mods = append(mods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate modules: %w", err)
	}
	return mods, nil
}

// ListRuns returns the runs of target in the order they were recorded,
// or every run when target is empty.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ListRuns(ctx context.Context, target string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target, module_hash, mode, loops, rewrites, max_len, result, result_hash, error, seq
		FROM runs
		WHERE ? = '' OR target = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, target, target)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		err := rows.Scan(&r.ID, &r.Target, &r.ModuleHash, &r.Mode,
			&r.Loops, &r.Rewrites, &r.MaxLen, &r.Result, &r.ResultHash, &r.Error, &r.Seq)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
