/*
 * errors.go, part of gorxd.
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

package rxd

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKind classifies the errors that stop a simulation.
type ErrKind int

const (
	//ConfigError is a problem with templates, rules or parameters, detected before stepping.
	ConfigError ErrKind = iota
	//NumericalError is a NaN/Inf coordinate or a rotation operator that drifted too far from orthonormal.
	NumericalError
	//CapacityError means the number of live molecules, complexes, rules or species went over the configured maximum.
	CapacityError
	//ConsistencyError is a broken internal invariant, such as an asymmetric bound pair.
	ConsistencyError
)

func (k ErrKind) String() string {
	switch k {
	case ConfigError:
		return "configuration"
	case NumericalError:
		return "numerical"
	case CapacityError:
		return "capacity"
	case ConsistencyError:
		return "consistency"
	}
	return "unknown"
}

// CError is the error type for the gorxd packages. It fullfills the Error interface.
// All CErrors are critical: the run can't continue after one.
type CError struct {
	message string
	kind    ErrKind
	count   int
	deco    []string
	err     error
}

// NewError returns a new error of the given kind. caller is the name of the function
// that creates it and is used as the first decoration.
func NewError(kind ErrKind, caller string, format string, args ...interface{}) *CError {
	return &CError{message: fmt.Sprintf(format, args...), kind: kind, deco: []string{caller}}
}

// NewCapacityError returns a capacity error carrying the offending count.
func NewCapacityError(caller, what string, count, max int) *CError {
	e := NewError(CapacityError, caller, "%d live %s, the maximum is %d", count, what, max)
	e.count = count
	return e
}

// WrapError returns a new error of the given kind wrapping err.
func WrapError(kind ErrKind, caller string, err error) *CError {
	return &CError{message: err.Error(), kind: kind, deco: []string{caller}, err: err}
}

func (err *CError) Error() string {
	return fmt.Sprintf("gorxd %s error: %s (%s)", err.kind, err.message, strings.Join(err.deco, " < "))
}

// Decorate adds dec to the error's call chain, and returns the chain.
func (err *CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns true. Every CError halts the simulation.
func (err *CError) Critical() bool { return true }

// Kind returns the kind of error.
func (err *CError) Kind() ErrKind { return err.kind }

// Count returns the offending count for capacity errors, 0 for the rest.
func (err *CError) Count() int { return err.count }

func (err *CError) Unwrap() error { return err.err }

// IsKind returns true if err is, or wraps, a CError of the given kind.
func IsKind(err error, kind ErrKind) bool {
	var e *CError
	if errors.As(err, &e) {
		return e.kind == kind
	}
	return false
}

// ErrDecorate decorates err with the caller's name if err implements Error,
// and returns it. Other errors are returned unchanged.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
