package dag

import (
	"errors"
	"testing"
)

func TestAddNodeErrors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(a) again = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(x->a) = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(a->x) = %v, want ErrUnknownTargetNode", err)
	}
}

func TestInsertionOrder(t *testing.T) {
	g := New()
	ids := []string{"z", "m", "a", "q", "b"}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}
	for run := 0; run < 5; run++ {
		got := NodeIDs(g.Nodes())
		for i := range ids {
			if got[i] != ids[i] {
				t.Fatalf("Nodes() = %v, want %v", got, ids)
			}
		}
	}

	g.SetRows(map[string]int{"m": 1, "b": 1})
	row0 := NodeIDs(g.NodesInRow(0))
	row1 := NodeIDs(g.NodesInRow(1))
	if len(row0) != 3 || row0[0] != "z" || row0[1] != "a" || row0[2] != "q" {
		t.Errorf("NodesInRow(0) = %v, want [z a q]", row0)
	}
	if len(row1) != 2 || row1[0] != "m" || row1[1] != "b" {
		t.Errorf("NodesInRow(1) = %v, want [m b]", row1)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b", Row: 1})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	if !g.HasEdge("a", "b") {
		t.Fatal("HasEdge(a, b) = false after AddEdge")
	}
	g.RemoveEdge("a", "b")
	if g.HasEdge("a", "b") || g.EdgeCount() != 0 || g.InDegree("b") != 0 {
		t.Errorf("edge a->b still present after RemoveEdge")
	}
	g.RemoveEdge("a", "b")
}

func TestValidate(t *testing.T) {
	t.Run("NonConsecutive", func(t *testing.T) {
		g := New()
		_ = g.AddNode(Node{ID: "a"})
		_ = g.AddNode(Node{ID: "b", Row: 2})
		_ = g.AddEdge(Edge{From: "a", To: "b"})
		if err := g.Validate(); !errors.Is(err, ErrNonConsecutiveRows) {
			t.Errorf("Validate() = %v, want ErrNonConsecutiveRows", err)
		}
	})
	t.Run("Cycle", func(t *testing.T) {
		g := New()
		_ = g.AddNode(Node{ID: "a"})
		_ = g.AddNode(Node{ID: "b", Row: 1})
		_ = g.AddEdge(Edge{From: "a", To: "b"})
		_ = g.AddEdge(Edge{From: "b", To: "a"})
		err := g.Validate()
		if err == nil {
			t.Error("Validate() = nil for a two-node cycle")
		}
	})
}

func TestCountCrossings(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		_ = g.AddNode(Node{ID: id})
	}
	for _, id := range []string{"x", "y", "z"} {
		_ = g.AddNode(Node{ID: id, Row: 1})
	}
	_ = g.AddEdge(Edge{From: "a", To: "z"})
	_ = g.AddEdge(Edge{From: "b", To: "y"})
	_ = g.AddEdge(Edge{From: "c", To: "x"})

	orders := map[int][]string{0: {"a", "b", "c"}, 1: {"x", "y", "z"}}
	if got := CountCrossings(g, orders); got != 3 {
		t.Errorf("CountCrossings() = %d, want 3", got)
	}
	orders[1] = []string{"z", "y", "x"}
	if got := CountCrossings(g, orders); got != 0 {
		t.Errorf("CountCrossings() reversed = %d, want 0", got)
	}
}

func TestCountPairCrossings(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddNode(Node{ID: "x", Row: 1})
	_ = g.AddNode(Node{ID: "y", Row: 1})
	_ = g.AddEdge(Edge{From: "a", To: "y"})
	_ = g.AddEdge(Edge{From: "b", To: "x"})

	pos := PosMap([]string{"x", "y"})
	if got := CountPairCrossings(g, "a", "b", pos, false); got != 1 {
		t.Errorf("CountPairCrossings(a, b) = %d, want 1", got)
	}
	if got := CountPairCrossings(g, "b", "a", pos, false); got != 0 {
		t.Errorf("CountPairCrossings(b, a) = %d, want 0", got)
	}
	upper := PosMap([]string{"a", "b"})
	if got := CountPairCrossings(g, "x", "y", upper, true); got != 1 {
		t.Errorf("CountPairCrossings(x, y, parents) = %d, want 1", got)
	}
}
