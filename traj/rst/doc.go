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

// Package rst reads and writes gorxd restart files.
//
// A restart file is a sequence of JSON documents, one per line, compressed with z-standard
// (zstd), or with gzip if the file name ends in "z" (e.g. run.rst.gz).
//
// The first document is the Header. It identifies the run with a UUID and carries everything
// needed to rebuild the simulation: the parameters, the molecule templates and the reaction
// rules. Each following document is a frame: a sim.Snapshot, with the state of every
// molecule and complex at a given step. The file can be truncated after any complete frame
// and still be read.
package rst
