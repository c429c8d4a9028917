package graph

import "testing"

func TestAddNodeAndEdgeRoundTrip(t *testing.T) {
	s := NewStore()
	a := &Node{ID: "a", Type: NodeAction, Label: "Do the thing"}
	b := &Node{ID: "b", Type: NodeActor, Label: "Alice"}
	s.AddNode(a)
	s.AddNode(b)
	s.AddEdge(&Edge{From: "b", To: "a", Predicate: EdgeOwns})

	if s.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", s.NodeCount())
	}
	if s.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge, got %d", s.EdgeCount())
	}
	if s.Node("a") != a {
		t.Fatal("expected Node lookup to return the stored pointer")
	}
}

func TestGetContextPartitionsByAllNodeTypes(t *testing.T) {
	s := NewStore()
	s.AddNode(&Node{ID: "action", Type: NodeAction})
	s.AddNode(&Node{ID: "actor", Type: NodeActor})
	s.AddNode(&Node{ID: "risk", Type: NodeRisk})
	s.AddNode(&Node{ID: "goal", Type: NodeGoal})
	s.AddEdge(&Edge{From: "actor", To: "action", Predicate: EdgeOwns})
	s.AddEdge(&Edge{From: "action", To: "risk", Predicate: EdgeImpacts})
	s.AddEdge(&Edge{From: "action", To: "goal", Predicate: EdgeHasGoal})

	ctx := s.GetContext("action", 1)
	if len(ctx.Nodes[NodeActor]) != 1 {
		t.Errorf("expected 1 actor in context, got %d", len(ctx.Nodes[NodeActor]))
	}
	if len(ctx.Nodes[NodeRisk]) != 1 {
		t.Errorf("expected 1 risk in context, got %d", len(ctx.Nodes[NodeRisk]))
	}
	if len(ctx.Nodes[NodeGoal]) != 1 {
		t.Errorf("expected 1 goal in context, got %d", len(ctx.Nodes[NodeGoal]))
	}
}

func TestGetContextRespectsDepthBound(t *testing.T) {
	s := NewStore()
	s.AddNode(&Node{ID: "a", Type: NodeAction})
	s.AddNode(&Node{ID: "b", Type: NodeActor})
	s.AddNode(&Node{ID: "c", Type: NodeRisk})
	s.AddEdge(&Edge{From: "a", To: "b", Predicate: EdgeOwns})
	s.AddEdge(&Edge{From: "b", To: "c", Predicate: EdgeImpacts})

	ctx := s.GetContext("a", 1)
	if len(ctx.Nodes[NodeRisk]) != 0 {
		t.Fatal("expected risk two hops away to be excluded at depth 1")
	}

	ctx2 := s.GetContext("a", 2)
	if len(ctx2.Nodes[NodeRisk]) != 1 {
		t.Fatal("expected risk two hops away to be included at depth 2")
	}
}
