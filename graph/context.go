package graph

// Context is the bounded-depth neighborhood of a starting node, partitioned
// by node type so callers (the Subgraph Builder, the Pack Builder) can
// address "all the risks near this action" without re-filtering a flat
// node list. Every NodeType present in the graph gets its own bucket, not
// just actors/policies/risks.
type Context struct {
	Nodes map[NodeType][]*Node
	Edges []*Edge
}

// GetContext performs a breadth-first traversal from startID out to
// maxDepth hops (inclusive) and returns every reachable node, partitioned
// by type, plus every edge touched along the way. maxDepth <= 0 returns
// just the starting node.
func (s *Store) GetContext(startID string, maxDepth int) Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	visited := map[string]bool{startID: true}
	queue := []string{startID}
	edgeSeen := make(map[*Edge]bool)
	var edges []*Edge

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []string
		for _, id := range queue {
			for _, e := range s.adjacency[id] {
				if !edgeSeen[e] {
					edgeSeen[e] = true
					edges = append(edges, e)
				}
				neighbor := e.To
				if neighbor == id {
					neighbor = e.From
				}
				if !visited[neighbor] {
					visited[neighbor] = true
					next = append(next, neighbor)
				}
			}
		}
		queue = next
	}

	byType := make(map[NodeType][]*Node)
	for id := range visited {
		n, ok := s.nodes[id]
		if !ok {
			continue
		}
		byType[n.Type] = append(byType[n.Type], n)
	}

	return Context{Nodes: byType, Edges: edges}
}
