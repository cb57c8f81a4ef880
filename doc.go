/*
 * doc.go, part of gorxd.
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

/*
Package rxd is the main package of the gorxd library. It provides the molecule, interface and complex
structures of a particle-based reaction-diffusion simulation, together with the System arena that owns them.

		**gorxd Capabilities**

	    Molecules with oriented binding interfaces, each with a finite set of states.

	    Rigid complexes of bound molecules, diffusing and rotating as a single body.

	    Merging and splitting of complexes, keeping the molecule/complex bookkeeping
		and the symmetry of bound pairs consistent.

	    Uniform-grid spatial index for neighbor search, with periodic or reflecting
		boundaries (package simvol).

	    Binding, unbinding and state-change rules with a documented encounter model (package rxn).

	    A seeded, reproducible stepper that runs its expensive phases over several goroutines (package sim).

	    Restart files in compressed JSON lines (package traj/rst).

gorxd uses the v3.Matrix type for coordinates, based on gonum.org/v1/gonum/mat. Each row
of a v3.Matrix is one point in space, and rotation operators are applied from the right.
*/
package rxd
