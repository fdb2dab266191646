package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/optimal/internal/term"
)

// RecursionWarning reports a group of definitions that reach each other
// through references.
type RecursionWarning struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
	Level   string   `json:"level"`
}

// AnalyzeRecursion finds every strongly connected component of the
// reference graph of defs and reports those that are cyclic: more than one
// member, or one member that refers to itself.
//
// Recursive definitions reduce fine under a lazy strategy, but only a
// reduction budget stops one that never reaches a normal form, so check
// surfaces them.
func AnalyzeRecursion(defs term.Defs) []RecursionWarning {
	graph := make(refGraph, len(defs))
	for _, name := range defs.Names() {
		graph[name] = term.Refs(defs[name])
	}

	var warnings []RecursionWarning
	for _, scc := range tarjanSCC(graph, defs.Names()) {
		if len(scc) > 1 || graph.selfLoop(scc[0]) {
			warnings = append(warnings, sccWarning(scc, graph))
		}
	}
	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Path[0] < warnings[j].Path[0]
	})
	return warnings
}

// refGraph maps a definition to the definitions it references.
type refGraph map[string][]string

func (g refGraph) selfLoop(name string) bool {
	for _, w := range g[name] {
		if w == name {
			return true
		}
	}
	return false
}

// tarjanSCC returns the strongly connected components of g, visiting roots
// in the given order so that the result is deterministic.
func tarjanSCC(g refGraph, order []string) [][]string {
	var (
		next    int
		stack   []string
		index   = make(map[string]int)
		low     = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var visit func(v string)
	visit = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g[v] {
			if _, ok := g[w]; !ok {
				continue
			}
			if _, seen := index[w]; !seen {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, v := range order {
		if _, seen := index[v]; !seen {
			visit(v)
		}
	}
	return sccs
}

func sccWarning(scc []string, g refGraph) RecursionWarning {
	if len(scc) == 1 {
		return RecursionWarning{
			Path:    []string{scc[0], scc[0]},
			Message: fmt.Sprintf("recursive definition: %s refers to itself", scc[0]),
			Level:   "info",
		}
	}
	path := cyclePath(scc, g)
	return RecursionWarning{
		Path:    path,
		Message: fmt.Sprintf("mutually recursive definitions: %s", strings.Join(path, " → ")),
		Level:   "info",
	}
}

// cyclePath walks from the first member of scc along edges that stay in
// the component until it returns to the start.
func cyclePath(scc []string, g refGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, v := range scc {
		members[v] = true
	}
	start := scc[0]
	path := []string{start}
	visited := map[string]bool{start: true}
	for cur := start; ; {
		var step string
		for _, w := range g[cur] {
			if w == start && len(path) > 1 {
				step = w
				break
			}
			if members[w] && !visited[w] {
				step = w
				break
			}
		}
		if step == "" {
			return append(path, start)
		}
		path = append(path, step)
		if step == start {
			return path
		}
		visited[step] = true
		cur = step
	}
}
