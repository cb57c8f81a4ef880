/*
 * rule.go, part of gorxd.
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
	"fmt"
	"strings"

	rxd "github.com/rmera/gorxd"
)

// Kind is the type of a reaction rule.
type Kind int

const (
	//Bind associates two free interfaces, merging their complexes.
	Bind Kind = iota
	//Unbind dissociates a bound pair, splitting the complex if it becomes disconnected.
	Unbind
	//StateChange changes the state of one interface.
	StateChange
	//Facilitated changes the state of interface A when it meets interface B. No bond is formed.
	Facilitated
	//Create adds new free monomers to the box (zeroth order).
	Create
	//Destroy removes free monomers (first order).
	Destroy
)

var kindNames = []string{"bind", "unbind", "state", "facilitated", "create", "destroy"}

func (K Kind) String() string {
	if int(K) < 0 || int(K) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[K]
}

// ParseKind returns the Kind with the given name.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(s)
	for i, v := range kindNames {
		if v == s {
			return Kind(i), nil
		}
	}
	return Bind, rxd.NewError(rxd.ConfigError, "rxn.ParseKind", "unknown reaction kind %q", s)
}

// Bimolecular returns true for the kinds that need a partner within sigma.
func (K Kind) Bimolecular() bool {
	return K == Bind || K == Facilitated
}

// Site is an interface in a given state, of a given molecule type.
type Site struct {
	Mol   int //template index
	Iface int
	State int
}

func (S Site) less(O Site) bool {
	if S.Mol != O.Mol {
		return S.Mol < O.Mol
	}
	if S.Iface != O.Iface {
		return S.Iface < O.Iface
	}
	return S.State < O.State
}

// Rule is a resolved, immutable reaction rule. Which fields are meaningful depends on the Kind.
type Rule struct {
	Index int
	Name  string
	Kind  Kind
	//A and B are the reactant interfaces. B is used only by Bind, Unbind and Facilitated.
	A, B Site
	//ProdA and ProdB are the states of A and B after the reaction.
	ProdA, ProdB int
	//Rate units depend on the kind: nm^3/us for Bind and Facilitated, 1/us for
	//Unbind, StateChange and Destroy, 1/(nm^3 us) for Create.
	Rate float64
	//Sigma is the largest interface-interface distance at which a bimolecular rule can fire (nm).
	Sigma float64
	//Loop allows a Bind rule to close a loop between two molecules of the same complex.
	Loop bool
	//Release is the separation (nm) added between the two products of an Unbind that splits a complex,
	//along the line joining the two interfaces.
	Release float64
	//Mol is the molecule type created or destroyed.
	Mol int
}

func (R *Rule) String() string {
	if R.Name != "" {
		return R.Name
	}
	return fmt.Sprintf("%s#%d", R.Kind, R.Index)
}

// SiteDef is a reactant interface given by names.
type SiteDef struct {
	Mol   string `mapstructure:"mol" json:"mol"`
	Iface string `mapstructure:"iface" json:"iface"`
	State string `mapstructure:"state" json:"state"`
}

func (D SiteDef) String() string {
	if D.State == "" {
		return fmt.Sprintf("%s(%s)", D.Mol, D.Iface)
	}
	return fmt.Sprintf("%s(%s~%s)", D.Mol, D.Iface, D.State)
}

// Def is a reaction rule as given by the user, before it is resolved against the templates.
type Def struct {
	Name    string  `mapstructure:"name" json:"name"`
	Kind    string  `mapstructure:"kind" json:"kind"`
	A       SiteDef `mapstructure:"a" json:"a"`
	B       SiteDef `mapstructure:"b" json:"b"`
	ProdA   string  `mapstructure:"prod_a" json:"prod_a"`
	ProdB   string  `mapstructure:"prod_b" json:"prod_b"`
	Rate    float64 `mapstructure:"rate" json:"rate"`
	Sigma   float64 `mapstructure:"sigma" json:"sigma"`
	Loop    bool    `mapstructure:"loop" json:"loop"`
	Release float64 `mapstructure:"release" json:"release"`
	//Mol is the molecule type for create and destroy rules.
	Mol string `mapstructure:"mol" json:"mol"`
	//Reverse, for bind rules, is the dissociation rate of the resulting pair. If >0, an unbind rule
	//restoring the reactant states is added.
	Reverse float64 `mapstructure:"reverse" json:"reverse"`
}
