package store

import "errors"

// ErrNotFound is returned when a module or run does not exist.
var ErrNotFound = errors.New("not found")

// ErrAmbiguous is returned when a hash prefix matches more than one module.
var ErrAmbiguous = errors.New("ambiguous hash prefix")

// ModuleRecord is a stored module.
type ModuleRecord struct {
	Hash   string
	Name   string
	Source string
	// Defs maps qualified names to printed definitions.
	Defs    map[string]string
	Imports []ImportRef
	Seq     int64
}

// ID is the display form "name#hash".
func (m ModuleRecord) ID() string {
	return m.Name + "#" + m.Hash
}

// ImportRef names one import of a stored module.
type ImportRef struct {
	Name string
	Hash string
}

// Run is one recorded evaluation.
type Run struct {
	ID         string
	Target     string
	ModuleHash string
	Mode       string
	Loops      int
	Rewrites   int
	MaxLen     int
	Result     string
	ResultHash string
	Error      string
	Seq        int64
}
