package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SaveModule inserts a module record and its import edges.
// Uses ON CONFLICT(hash) DO NOTHING for idempotency: a module is
// identified by its content, so a second save of the same hash is a no-op.
//
// Every import must already be stored (foreign key constraint).
func (s *Store) SaveModule(ctx context.Context, m ModuleRecord) error {
	defsJSON, err := marshalDefs(m.Defs)
	if err != nil {
		return fmt.Errorf("save module %s: %w", m.Name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save module %s: %w", m.Name, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO modules (hash, name, source, defs, seq)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM modules))
		ON CONFLICT(hash) DO NOTHING
	`, m.Hash, m.Name, m.Source, defsJSON)
	if err != nil {
		return fmt.Errorf("save module %s: %w", m.Name, err)
	}
	if inserted, _ := res.RowsAffected(); inserted == 0 {
		return tx.Commit()
	}

	for i, imp := range m.Imports {
		if err := insertImport(ctx, tx, m.Hash, i, imp); err != nil {
			return fmt.Errorf("save module %s: %w", m.Name, err)
		}
	}
	return tx.Commit()
}

func insertImport(ctx context.Context, tx *sql.Tx, hash string, position int, imp ImportRef) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO module_imports (hash, position, name, imported_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, hash, position, imp.Name, imp.Hash)
	if err != nil {
		return fmt.Errorf("import %s#%s: %w", imp.Name, imp.Hash, err)
	}
	return nil
}

// WriteRun records an evaluation. Uses ON CONFLICT(id) DO NOTHING, so
// writing the same run id twice keeps the first record.
func (s *Store) WriteRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, target, module_hash, mode, loops, rewrites, max_len, result, result_hash, error, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs))
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.Target,
		r.ModuleHash,
		r.Mode,
		r.Loops,
		r.Rewrites,
		r.MaxLen,
		r.Result,
		r.ResultHash,
		r.Error,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}
