/*
 * rst.go, part of gorxd.
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

package rst

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	rxd "github.com/rmera/gorxd"
	"github.com/rmera/gorxd/rxn"
	"github.com/rmera/gorxd/sim"
)

// Format is the value of the Format field in the headers this package writes.
const Format = "gorxd-rst/1"

// Header is the first document of a restart file.
type Header struct {
	Format    string             `json:"format"`
	Run       uuid.UUID          `json:"run"`
	Created   time.Time          `json:"created"`
	Step      int                `json:"step"` //first step of the run
	Params    rxd.Parameters     `json:"params"`
	Templates []*rxd.MolTemplate `json:"templates"`
	Rules     []rxn.Def          `json:"rules"`
}

// NewHeader returns a header for a new run, with a fresh run UUID.
func NewHeader(p rxd.Parameters, templates []*rxd.MolTemplate, rules []rxn.Def) *Header {
	return &Header{Format: Format, Run: uuid.New(), Created: time.Now().UTC(), Params: p, Templates: templates, Rules: rules}
}

// Writer writes snapshots to a restart file. It implements sim.Observer.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	enc       *json.Encoder
	filename  string
	frames    int
	writeable bool
}

func compressor(name string, w io.Writer) (io.WriteCloser, error) {
	if strings.HasSuffix(strings.ToLower(name), "z") {
		return gzip.NewWriterLevel(w, gzip.BestSpeed)
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

// NewWriter creates the file name and writes the header to it.
func NewWriter(name string, h *Header) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	W, err := newWriter(name, f, h)
	if err != nil {
		f.Close()
		return nil, errDecorate(err, "NewWriter")
	}
	W.f = f
	return W, nil
}

// NewStreamWriter writes a zstd-compressed restart stream to w. Closing the Writer does not close w.
func NewStreamWriter(w io.Writer, h *Header) (*Writer, error) {
	W, err := newWriter("", w, h)
	if err != nil {
		return nil, errDecorate(err, "NewStreamWriter")
	}
	return W, nil
}

func newWriter(name string, w io.Writer, h *Header) (*Writer, error) {
	if h == nil {
		return nil, Error{"nil header", name, []string{"newWriter"}, true}
	}
	W := &Writer{filename: name}
	var err error
	W.h, err = compressor(name, w)
	if err != nil {
		return nil, Error{"can't set up compression: " + err.Error(), name, []string{"newWriter"}, true}
	}
	W.enc = json.NewEncoder(W.h)
	if h.Format == "" {
		h.Format = Format
	}
	if err := W.enc.Encode(h); err != nil {
		return nil, Error{"can't write header: " + err.Error(), name, []string{"newWriter"}, true}
	}
	W.writeable = true
	return W, nil
}

// Observe writes snap as a new frame.
func (W *Writer) Observe(snap *sim.Snapshot) error {
	if !W.writeable {
		return Error{NotWriteable, W.filename, []string{"Observe"}, true}
	}
	if snap == nil {
		return Error{"nil snapshot", W.filename, []string{"Observe"}, true}
	}
	if err := W.enc.Encode(snap); err != nil {
		return Error{err.Error(), W.filename, []string{"Observe"}, true}
	}
	W.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (W *Writer) Frames() int {
	return W.frames
}

// Close flushes the compressed stream and closes the file, if the Writer owns one.
func (W *Writer) Close() error {
	if W == nil || !W.writeable {
		return nil
	}
	W.writeable = false
	err := W.h.Close()
	if W.f != nil {
		if err2 := W.f.Close(); err == nil {
			err = err2
		}
	}
	if err != nil {
		return Error{err.Error(), W.filename, []string{"Close"}, true}
	}
	return nil
}

// *zstd.Decoder doesn't implement io.ReadCloser, its Close returns nothing.
type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// Reader reads a restart file.
type Reader struct {
	f        *os.File
	h        io.ReadCloser
	dec      *json.Decoder
	filename string
	header   *Header
	frames   int
	readable bool
}

// Open opens the restart file name and reads its header.
func Open(name string) (*Reader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"Open"}, true}
	}
	R, err := newReader(name, f)
	if err != nil {
		f.Close()
		return nil, errDecorate(err, "Open")
	}
	R.f = f
	return R, nil
}

// NewStreamReader reads a zstd-compressed restart stream from r.
func NewStreamReader(r io.Reader) (*Reader, error) {
	R, err := newReader("", r)
	if err != nil {
		return nil, errDecorate(err, "NewStreamReader")
	}
	return R, nil
}

func newReader(name string, r io.Reader) (*Reader, error) {
	R := &Reader{filename: name}
	br := bufio.NewReader(r)
	var err error
	if strings.HasSuffix(strings.ToLower(name), "z") {
		R.h, err = gzip.NewReader(br)
	} else {
		var d *zstd.Decoder
		d, err = zstd.NewReader(br)
		if err == nil {
			R.h = zstdCloser{d}
		}
	}
	if err != nil {
		return nil, Error{"can't set up decompression: " + err.Error(), name, []string{"newReader"}, true}
	}
	R.dec = json.NewDecoder(R.h)
	R.header = new(Header)
	if err := R.dec.Decode(R.header); err != nil {
		R.h.Close()
		return nil, Error{"can't read header: " + err.Error(), name, []string{"newReader"}, true}
	}
	if R.header.Format != Format {
		R.h.Close()
		return nil, Error{fmt.Sprintf("%s: %q", WrongFormat, R.header.Format), name, []string{"newReader"}, true}
	}
	R.readable = true
	return R, nil
}

// Header returns the header of the file.
func (R *Reader) Header() *Header {
	return R.header
}

// Next reads the next frame into snap. At the end of the file it returns an error
// that satisfies errors.Is(err, io.EOF), and closes the Reader.
func (R *Reader) Next(snap *sim.Snapshot) error {
	if !R.readable {
		return Error{NotReadable, R.filename, []string{"Next"}, true}
	}
	var s sim.Snapshot
	err := R.dec.Decode(&s)
	if errors.Is(err, io.EOF) {
		R.Close()
		return newLastFrameError(R.filename, "Next")
	}
	if err != nil {
		return Error{fmt.Sprintf("frame %d: %s", R.frames, err.Error()), R.filename, []string{"Next"}, true}
	}
	R.frames++
	if snap != nil {
		*snap = s
	}
	return nil
}

// Last reads all the remaining frames and returns the last one.
func (R *Reader) Last() (*sim.Snapshot, error) {
	var last *sim.Snapshot
	for {
		s := new(sim.Snapshot)
		err := R.Next(s)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errDecorate(err, "Last")
		}
		last = s
	}
	if last == nil {
		return nil, Error{"no frames in file", R.filename, []string{"Last"}, true}
	}
	return last, nil
}

// Close closes the Reader. It can't be used after this call.
func (R *Reader) Close() {
	if !R.readable {
		return
	}
	R.h.Close()
	if R.f != nil {
		R.f.Close()
	}
	R.readable = false
}

// Resume reads the last frame of the restart file name and rebuilds the system, with the
// parameters p, or the ones in the header if p is nil. It returns the system, the rule
// table, and the frame.
func Resume(name string, p *rxd.Parameters) (*rxd.System, *rxn.Table, *sim.Snapshot, error) {
	R, err := Open(name)
	if err != nil {
		return nil, nil, nil, errDecorate(err, "Resume")
	}
	defer R.Close()
	last, err := R.Last()
	if err != nil {
		return nil, nil, nil, errDecorate(err, "Resume")
	}
	h := R.Header()
	params := h.Params
	if p != nil {
		params = *p
	}
	S, err := sim.Restore(last, params, h.Templates)
	if err != nil {
		return nil, nil, nil, rxd.ErrDecorate(err, "Resume")
	}
	tab, err := rxn.NewTable(h.Rules, S, params)
	if err != nil {
		return nil, nil, nil, rxd.ErrDecorate(err, "Resume")
	}
	return S, tab, last, nil
}

//Errors

// errDecorate decorates err with the caller's name if it is one of the errors of this
// package or of gorxd, and returns it.
func errDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
		return e
	}
	return rxd.ErrDecorate(err, caller)
}

// Error is the error type for restart files. It fullfills rxd.Error.
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("restart file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// FileName returns the file to which the failing handle was associated
func (err Error) FileName() string { return err.filename }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	NotReadable  = "restart handle not readable"
	NotWriteable = "restart handle not writeable"
	WrongFormat  = "wrong format in restart header"
)

// lastFrameError is returned when the last frame has been read.
type lastFrameError struct {
	deco     []string
	fileName string
}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Unwrap() error { return io.EOF }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}
