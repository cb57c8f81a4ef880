/*
 * resolve.go, part of gorxd.
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

package rxn

import (
	"math"

	rxd "github.com/rmera/gorxd"
)

func templateIndex(T rxd.Templater, name string) int {
	for i := 0; i < T.NumTemplates(); i++ {
		if T.Template(i).Name == name {
			return i
		}
	}
	return -1
}

func resolveSite(d SiteDef, T rxd.Templater, rule string) (Site, error) {
	bad := func(format string, args ...interface{}) (Site, error) {
		args = append([]interface{}{rule}, args...)
		return Site{}, rxd.NewError(rxd.ConfigError, "rxn.resolveSite", "rule %s: "+format, args...)
	}
	m := templateIndex(T, d.Mol)
	if m < 0 {
		return bad("unknown molecule type %q", d.Mol)
	}
	t := T.Template(m)
	f := t.IfaceIndex(d.Iface)
	if f < 0 {
		return bad("%s has no interface %q", t.Name, d.Iface)
	}
	s := t.StateIndex(f, d.State)
	if s < 0 {
		return bad("%s(%s) has no state %q", t.Name, d.Iface, d.State)
	}
	return Site{Mol: m, Iface: f, State: s}, nil
}

// product returns the index of the state name for the interface of s, or the state of s if name is empty.
func product(s Site, name string, T rxd.Templater, rule string) (int, error) {
	if name == "" {
		return s.State, nil
	}
	t := T.Template(s.Mol)
	i := t.StateIndex(s.Iface, name)
	if i < 0 {
		return 0, rxd.NewError(rxd.ConfigError, "rxn.product", "rule %s: %s(%s) has no state %q", rule, t.Name, t.Ifaces[s.Iface].Name, name)
	}
	return i, nil
}

func validRate(x float64) bool {
	return x >= 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}

// resolve turns a definition into one rule, or two for reversible binding.
func resolve(d Def, T rxd.Templater) ([]*Rule, error) {
	kind, err := ParseKind(d.Kind)
	if err != nil {
		return nil, err
	}
	r := &Rule{Name: d.Name, Kind: kind, Rate: d.Rate, Sigma: d.Sigma, Loop: d.Loop, Release: d.Release}
	name := r.String()
	if d.Name == "" {
		name = kind.String() + " " + d.A.String()
		if kind == Create || kind == Destroy {
			name = kind.String() + " " + d.Mol
		}
	}
	bad := func(format string, args ...interface{}) ([]*Rule, error) {
		args = append([]interface{}{name}, args...)
		return nil, rxd.NewError(rxd.ConfigError, "rxn.resolve", "rule %s: "+format, args...)
	}
	if !validRate(d.Rate) || !validRate(d.Release) || !validRate(d.Reverse) {
		return bad("rates and distances must be finite and non-negative")
	}
	switch kind {
	case Create, Destroy:
		r.Mol = templateIndex(T, d.Mol)
		if r.Mol < 0 {
			return bad("unknown molecule type %q", d.Mol)
		}
		return []*Rule{r}, nil
	}
	if r.A, err = resolveSite(d.A, T, name); err != nil {
		return nil, err
	}
	if r.ProdA, err = product(r.A, d.ProdA, T, name); err != nil {
		return nil, err
	}
	if kind == StateChange {
		if r.ProdA == r.A.State {
			return bad("the product state is the same as the reactant state")
		}
		return []*Rule{r}, nil
	}
	if r.B, err = resolveSite(d.B, T, name); err != nil {
		return nil, err
	}
	if r.ProdB, err = product(r.B, d.ProdB, T, name); err != nil {
		return nil, err
	}
	if kind.Bimolecular() && (!(d.Sigma > 0) || math.IsInf(d.Sigma, 0)) {
		return bad("bimolecular rules need a positive, finite sigma")
	}
	if kind == Facilitated && r.ProdA == r.A.State {
		return bad("the product state is the same as the reactant state")
	}
	if kind != Bind {
		if d.Reverse > 0 {
			return bad("only bind rules can be reversible")
		}
		return []*Rule{r}, nil
	}
	if T.Template(r.A.Mol).Immobile() && T.Template(r.B.Mol).Immobile() && !r.Loop {
		return bad("two immobile molecule types can only bind to close loops")
	}
	if d.Reverse == 0 {
		return []*Rule{r}, nil
	}
	rev := &Rule{
		Name:    name + " (reverse)",
		Kind:    Unbind,
		A:       Site{Mol: r.A.Mol, Iface: r.A.Iface, State: r.ProdA},
		B:       Site{Mol: r.B.Mol, Iface: r.B.Iface, State: r.ProdB},
		ProdA:   r.A.State,
		ProdB:   r.B.State,
		Rate:    d.Reverse,
		Release: d.Release,
	}
	return []*Rule{r, rev}, nil
}
