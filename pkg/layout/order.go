package layout

import (
	"maps"
	"slices"

	"github.com/matzehuels/composeviz/pkg/dag"
)

// order returns the left-to-right (or top-to-bottom) order of every rank.
// Starting from insertion order, it alternates downward and upward
// barycentre sweeps, each followed by adjacent-swap refinement, and keeps
// the ordering with the fewest crossings seen.
func (s *Sugiyama) order(d *dag.DAG) map[int][]string {
	rows := d.RowIDs()
	orders := make(map[int][]string, len(rows))
	for _, r := range rows {
		orders[r] = dag.NodeIDs(d.NodesInRow(r))
	}

	best := cloneOrders(orders)
	bestCross := dag.CountCrossings(d, orders)
	for pass := 0; pass < s.opts.Passes && bestCross > 0; pass++ {
		if pass%2 == 0 {
			for k := 1; k < len(rows); k++ {
				reorder(d, orders[rows[k]], dag.PosMap(orders[rows[k-1]]), true)
			}
		} else {
			for k := len(rows) - 2; k >= 0; k-- {
				reorder(d, orders[rows[k]], dag.PosMap(orders[rows[k+1]]), false)
			}
		}
		transpose(d, orders, rows)

		if c := dag.CountCrossings(d, orders); c < bestCross {
			best, bestCross = cloneOrders(orders), c
		}
	}
	return best
}

// reorder sorts row in place by the mean position of each node's neighbours
// in the adjacent row. Nodes without such neighbours keep their slot.
func reorder(d *dag.DAG, row []string, adjPos map[string]int, useParents bool) {
	type entry struct {
		id   string
		bary float64
	}
	var movable []entry
	fixed := make([]bool, len(row))
	for i, id := range row {
		nbrs := d.Children(id)
		if useParents {
			nbrs = d.Parents(id)
		}
		sum, n := 0, 0
		for _, nb := range nbrs {
			if p, ok := adjPos[nb]; ok {
				sum += p
				n++
			}
		}
		if n == 0 {
			fixed[i] = true
			continue
		}
		movable = append(movable, entry{id, float64(sum) / float64(n)})
	}

	slices.SortStableFunc(movable, func(a, b entry) int {
		switch {
		case a.bary < b.bary:
			return -1
		case a.bary > b.bary:
			return 1
		}
		return 0
	})

	next := 0
	for i := range row {
		if fixed[i] {
			continue
		}
		row[i] = movable[next].id
		next++
	}
}

// transpose swaps adjacent nodes while doing so strictly reduces crossings
// with both neighbouring ranks.
func transpose(d *dag.DAG, orders map[int][]string, rows []int) {
	for round := 0; round < len(rows)+4; round++ {
		improved := false
		for k, r := range rows {
			var above, below map[string]int
			if k > 0 {
				above = dag.PosMap(orders[rows[k-1]])
			}
			if k < len(rows)-1 {
				below = dag.PosMap(orders[rows[k+1]])
			}
			row := orders[r]
			for i := 0; i+1 < len(row); i++ {
				u, v := row[i], row[i+1]
				if pairCrossings(d, v, u, above, below) < pairCrossings(d, u, v, above, below) {
					row[i], row[i+1] = v, u
					improved = true
				}
			}
		}
		if !improved {
			return
		}
	}
}

func pairCrossings(d *dag.DAG, left, right string, above, below map[string]int) int {
	c := 0
	if above != nil {
		c += dag.CountPairCrossings(d, left, right, above, true)
	}
	if below != nil {
		c += dag.CountPairCrossings(d, left, right, below, false)
	}
	return c
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for _, r := range slices.Sorted(maps.Keys(orders)) {
		out[r] = slices.Clone(orders[r])
	}
	return out
}
