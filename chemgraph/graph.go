/*
 * graph.go, part of gorxd.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chemgraph

import (
	"sort"

	rxd "github.com/rmera/gorxd"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Mol is a molecule as a node of the bond graph of a complex.
type Mol struct {
	*rxd.Molecule
}

func (M *Mol) ID() int64 {
	return int64(M.Molecule.ID)
}

// Bond is a bound interface pair, as an undirected edge.
type Bond struct {
	A, B     rxd.IfaceRef
	At1, At2 *Mol
}

func (B *Bond) From() graph.Node {
	return B.At1
}

func (B *Bond) To() graph.Node {
	return B.At2
}

// ReversedEdge returns the bond with its ends swapped.
func (B *Bond) ReversedEdge() graph.Edge {
	return &Bond{A: B.B, B: B.A, At1: B.At2, At2: B.At1}
}

// Topology is the bond graph of one complex.
type Topology struct {
	*simple.UndirectedGraph
	Bonds []*Bond
}

// TopologyFromComplex builds the bond graph of the complex C of S. Interfaces bound to
// another interface of the same molecule don't produce an edge.
func TopologyFromComplex(S *rxd.System, C *rxd.Complex) *Topology {
	T := &Topology{UndirectedGraph: simple.NewUndirectedGraph()}
	nodes := make(map[int]*Mol, C.Len())
	for _, id := range C.Members {
		n := &Mol{S.Mols[id]}
		nodes[id] = n
		T.AddNode(n)
	}
	for _, id := range C.Members {
		m := S.Mols[id]
		for i, f := range m.Ifaces {
			if !f.Bound() || f.Partner.Mol == id {
				continue
			}
			a := rxd.IfaceRef{Mol: id, Iface: i}
			if f.Partner.Less(a) {
				continue //each pair once
			}
			p, ok := nodes[f.Partner.Mol]
			if !ok {
				continue //a bond leaving the complex is caught by System.Check
			}
			b := &Bond{A: a, B: f.Partner, At1: nodes[id], At2: p}
			T.Bonds = append(T.Bonds, b)
			if !T.HasEdgeBetween(b.At1.ID(), b.At2.ID()) {
				T.SetEdge(b)
			}
		}
	}
	return T
}

// Components returns the molecule IDs of each connected component of the graph. Each group is sorted,
// and the groups are sorted by their first ID.
func (T *Topology) Components() [][]int {
	cc := topo.ConnectedComponents(T.UndirectedGraph)
	ret := make([][]int, 0, len(cc))
	for _, c := range cc {
		g := make([]int, 0, len(c))
		for _, n := range c {
			g = append(g, int(n.ID()))
		}
		sort.Ints(g)
		ret = append(ret, g)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}

// Connected returns true if there is a path of bonds between the molecules with IDs a and b.
func (T *Topology) Connected(a, b int) bool {
	na, nb := T.Node(int64(a)), T.Node(int64(b))
	if na == nil || nb == nil {
		return false
	}
	return topo.PathExistsIn(T.UndirectedGraph, na, nb)
}

// SplitGroups returns the connected groups of members of the complex cid of S, given the current bonds.
// A single group means the complex is still connected.
func SplitGroups(S *rxd.System, cid int) [][]int {
	C := S.Cplx(cid)
	if C == nil {
		return nil
	}
	if C.Len() == 1 {
		return [][]int{{C.Members[0]}}
	}
	return TopologyFromComplex(S, C).Components()
}
