package layout

import (
	"github.com/matzehuels/composeviz/pkg/dag"
	"github.com/matzehuels/composeviz/pkg/graph"
)

// alignRounds is the number of down/up alignment sweeps in place.
const alignRounds = 4

// place returns the centre of every node. The rank axis coordinate stacks
// ranks by their largest extent plus RankSep; the cross axis coordinate
// aligns each node with its neighbours while keeping the rank order and the
// separation between adjacent nodes.
func (s *Sugiyama) place(d *dag.DAG, orders map[int][]string, dir graph.Direction) map[string]point {
	horizontal := dir.Horizontal()
	rankSize := func(n *dag.Node) float64 {
		if horizontal {
			return n.Width
		}
		return n.Height
	}
	crossSize := func(n *dag.Node) float64 {
		if horizontal {
			return n.Height
		}
		return n.Width
	}

	rows := d.RowIDs()
	rankPos := make(map[int]float64, len(rows))
	prev := 0.0
	for k, r := range rows {
		extent := 0.0
		for _, id := range orders[r] {
			n, _ := d.Node(id)
			extent = max(extent, rankSize(n))
		}
		if k == 0 {
			rankPos[r] = extent / 2
		} else {
			rankPos[r] = rankPos[rows[k-1]] + prev/2 + s.opts.RankSep + extent/2
		}
		prev = extent
	}

	seps := make(map[int][]float64, len(rows))
	cross := make(map[string]float64, d.NodeCount())
	for _, r := range rows {
		row := orders[r]
		gaps := make([]float64, max(len(row)-1, 0))
		for i := range gaps {
			a, _ := d.Node(row[i])
			b, _ := d.Node(row[i+1])
			gaps[i] = crossSize(a)/2 + s.halfGap(a) + s.halfGap(b) + crossSize(b)/2
		}
		seps[r] = gaps

		// Pack, then centre the rank on the axis.
		x := 0.0
		for i, id := range row {
			if i > 0 {
				x += gaps[i-1]
			}
			cross[id] = x
		}
		for _, id := range row {
			cross[id] -= x / 2
		}
	}

	for round := 0; round < alignRounds; round++ {
		for k := 1; k < len(rows); k++ {
			s.align(d, orders[rows[k]], seps[rows[k]], cross, true)
		}
		for k := len(rows) - 2; k >= 0; k-- {
			s.align(d, orders[rows[k]], seps[rows[k]], cross, false)
		}
	}

	centres := make(map[string]point, d.NodeCount())
	for _, r := range rows {
		for _, id := range orders[r] {
			if horizontal {
				centres[id] = point{x: rankPos[r], y: cross[id]}
			} else {
				centres[id] = point{x: cross[id], y: rankPos[r]}
			}
		}
	}
	return centres
}

func (s *Sugiyama) halfGap(n *dag.Node) float64 {
	if n.IsSubdivider() {
		return s.opts.EdgeSep / 2
	}
	return s.opts.NodeSep / 2
}

// align moves the nodes of one rank as close as possible (least squares) to
// the mean cross coordinate of their neighbours, subject to gaps[i] between
// row[i] and row[i+1]. Nodes without neighbours aim to stay put.
func (s *Sugiyama) align(d *dag.DAG, row []string, gaps []float64, cross map[string]float64, useParents bool) {
	if len(row) == 0 {
		return
	}
	offset := make([]float64, len(row))
	target := make([]float64, len(row))
	for i, id := range row {
		if i > 0 {
			offset[i] = offset[i-1] + gaps[i-1]
		}
		nbrs := d.Children(id)
		if useParents {
			nbrs = d.Parents(id)
		}
		want := cross[id]
		if len(nbrs) > 0 {
			sum := 0.0
			for _, nb := range nbrs {
				sum += cross[nb]
			}
			want = sum / float64(len(nbrs))
		}
		target[i] = want - offset[i]
	}

	fit := isotonic(target)
	for i, id := range row {
		cross[id] = fit[i] + offset[i]
	}
}

// isotonic returns the non-decreasing sequence closest to v in the least
// squares sense (pool adjacent violators).
func isotonic(v []float64) []float64 {
	type block struct {
		sum float64
		n   int
	}
	mean := func(b block) float64 { return b.sum / float64(b.n) }

	blocks := make([]block, 0, len(v))
	for _, x := range v {
		blocks = append(blocks, block{x, 1})
		for len(blocks) > 1 {
			a, b := blocks[len(blocks)-2], blocks[len(blocks)-1]
			if mean(a) <= mean(b) {
				break
			}
			blocks = append(blocks[:len(blocks)-2], block{a.sum + b.sum, a.n + b.n})
		}
	}

	out := make([]float64, 0, len(v))
	for _, b := range blocks {
		m := mean(b)
		for i := 0; i < b.n; i++ {
			out = append(out, m)
		}
	}
	return out
}
