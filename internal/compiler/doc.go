// Package compiler translates λ-terms into interaction nets.
//
// Compile encodes a term into a fresh net: one CON node per abstraction
// and per application, a chain of DUP nodes for every variable used more
// than once, an ERA on the variable port of every binder that is never
// used, and a REF node for every global reference.
//
// Global definitions are compiled lazily. A Book owns the definitions and
// caches one Template per name; the reducer instantiates a copy of the
// template each time a REF node is reached. Each copy gets fresh DUP
// labels.
//
// AnalyzeRecursion reports definitions that reach themselves through
// references. Recursion is legal; the report is informational.
package compiler
