package pipeline

import (
	"sort"

	"git.home.luguber.info/inful/docpipe/internal/errors"
)

// Schedule computes the execution order of the registered actions. The
// order satisfies every before/after constraint; ties are broken by
// registration order so a pipeline behaves identically across runs given
// the same configuration. Scheduling seals the context: actions registered
// afterwards are rejected.
//
// A constraint naming an unknown action or a cycle in the constraint graph
// fails scheduling before any action executes.
func Schedule(bc *Context) ([]Action, error) {
	bc.seal()
	actions := bc.Actions()

	index := make(map[string]int, len(actions))
	for i, a := range actions {
		index[a.Name()] = i
	}

	// successors[i] holds the registration indices of actions that must
	// run after action i.
	successors := make([][]int, len(actions))
	indegree := make([]int, len(actions))

	addEdge := func(from, to int) {
		successors[from] = append(successors[from], to)
		indegree[to]++
	}

	for i, a := range actions {
		cons := a.Constraints()
		for _, name := range cons.After {
			j, ok := index[name]
			if !ok {
				return nil, errors.UnknownActionReference(a.Name(), name)
			}
			addEdge(j, i)
		}
		for _, name := range cons.Before {
			j, ok := index[name]
			if !ok {
				return nil, errors.UnknownActionReference(a.Name(), name)
			}
			addEdge(i, j)
		}
	}

	// Kahn's algorithm. The ready set is kept sorted by registration index
	// for deterministic tie-breaking.
	var ready []int
	for i := range actions {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]Action, 0, len(actions))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, actions[i])
		for _, j := range successors[i] {
			indegree[j]--
			if indegree[j] == 0 {
				ready = insertSorted(ready, j)
			}
		}
	}

	if len(order) != len(actions) {
		var cyclic []string
		for _, i := range cycleNodes(successors, indegree) {
			cyclic = append(cyclic, actions[i].Name())
		}
		return nil, errors.ConstraintCycle(cyclic)
	}

	return order, nil
}

// cycleNodes narrows the unscheduled nodes (indegree > 0 after Kahn's) to
// those actually on a cycle. Nodes merely downstream of a cycle are peeled
// off by repeatedly removing nodes with no remaining successors; what
// remains cannot reach a dead end, so every survivor sits on a cycle.
func cycleNodes(successors [][]int, indegree []int) []int {
	remaining := make([]bool, len(indegree))
	outdegree := make([]int, len(indegree))
	preds := make([][]int, len(indegree))
	for i := range indegree {
		remaining[i] = indegree[i] > 0
	}
	for i := range indegree {
		if !remaining[i] {
			continue
		}
		for _, j := range successors[i] {
			if remaining[j] {
				outdegree[i]++
				preds[j] = append(preds[j], i)
			}
		}
	}

	var peel []int
	for i := range indegree {
		if remaining[i] && outdegree[i] == 0 {
			peel = append(peel, i)
		}
	}
	for len(peel) > 0 {
		j := peel[0]
		peel = peel[1:]
		remaining[j] = false
		for _, p := range preds[j] {
			if remaining[p] {
				outdegree[p]--
				if outdegree[p] == 0 {
					peel = append(peel, p)
				}
			}
		}
	}

	var nodes []int
	for i := range indegree {
		if remaining[i] {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
