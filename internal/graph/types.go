package graph

// Node is one activity in the dependency graph.
type Node struct {
	Code          string
	Name          string
	Duration      int      // planned days
	Prerequisites []string // codes this activity waits on
}

// Graph is a directed acyclic graph of activities. Edges run from a
// prerequisite to the activity that waits on it.
type Graph struct {
	Nodes  map[string]*Node
	Order  []string            // codes in input order
	Adj    map[string][]string // code -> activities waiting on it
	RevAdj map[string][]string // code -> its prerequisites
	Roots  []string            // no prerequisites in the graph
	Leaves []string            // nothing waits on it

	// Unresolved lists prerequisite codes that name no activity in scope.
	Unresolved []string
	// Duplicates lists codes that appeared more than once; the first wins.
	Duplicates []string
}
