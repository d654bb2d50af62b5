// dump.go - token streams in CBOR format
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package tex

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/seehuhn/texcore/tex/cache"
	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/token"
)

const (
	dumpFormat  = "texcore-tokens"
	dumpVersion = 1
)

// ErrBadDump is returned by ReadDump for malformed input.
var ErrBadDump = errors.New("malformed token dump")

type recordType uint8

const (
	recHeader recordType = iota + 1
	recToken
	recTrailer
)

// A dump is a header record, followed by one record per token and a
// trailer which lists the input files.
type record struct {
	Type    recordType `cbor:"0,keyasint"`
	Format  string     `cbor:"1,keyasint,omitempty"`
	Version int        `cbor:"2,keyasint,omitempty"`
	Kind    uint8      `cbor:"3,keyasint,omitempty"`
	Cat     uint8      `cbor:"4,keyasint,omitempty"`
	Char    rune       `cbor:"5,keyasint,omitempty"`
	Name    string     `cbor:"6,keyasint,omitempty"`
	Files   []FileSum  `cbor:"7,keyasint,omitempty"`
}

// FileSum identifies the contents of an input file.
type FileSum struct {
	Name string `cbor:"1,keyasint"`
	Sum  string `cbor:"2,keyasint"`
}

// SumFiles computes the checksums of the given files.
func SumFiles(names []string) ([]FileSum, error) {
	res := make([]FileSum, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		res = append(res, FileSum{Name: name, Sum: cache.Sum(data)})
	}
	return res, nil
}

// Dump is the decoded contents of a token dump.
type Dump struct {
	Tokens token.List
	Files  []FileSum
}

// UpToDate reports whether all input files still have the recorded
// contents.
func (d *Dump) UpToDate() bool {
	for _, f := range d.Files {
		data, err := os.ReadFile(f.Name)
		if err != nil || cache.Sum(data) != f.Sum {
			return false
		}
	}
	return true
}

// DumpWriter writes a token stream in CBOR format.
type DumpWriter struct {
	enc *cbor.Encoder
	n   int
}

// NewDumpWriter writes the dump header to w and returns a writer for
// the tokens.
func NewDumpWriter(w io.Writer) (*DumpWriter, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}
	dw := &DumpWriter{enc: encMode.NewEncoder(w)}
	err = dw.enc.Encode(&record{
		Type:    recHeader,
		Format:  dumpFormat,
		Version: dumpVersion,
	})
	if err != nil {
		return nil, err
	}
	return dw, nil
}

// WriteToken appends a token to the dump.
func (dw *DumpWriter) WriteToken(tok token.Token) error {
	rec := &record{
		Type: recToken,
		Kind: uint8(tok.Kind),
	}
	switch tok.Kind {
	case token.Character:
		rec.Cat = uint8(tok.Cat)
		rec.Char = tok.Char
	case token.Active:
		rec.Char = tok.Char
	case token.ControlSequence:
		rec.Name = tok.Name
	default:
		return fmt.Errorf("cannot dump token %s", tok)
	}
	err := dw.enc.Encode(rec)
	if err != nil {
		return err
	}
	dw.n++
	return nil
}

// Count returns the number of tokens written so far.
func (dw *DumpWriter) Count() int {
	return dw.n
}

// Close writes the trailer, listing the input files.  No more tokens
// can be written after Close has been called.
func (dw *DumpWriter) Close(files []FileSum) error {
	return dw.enc.Encode(&record{
		Type:  recTrailer,
		Files: files,
	})
}

// ReadDump decodes a dump written by a DumpWriter.
func ReadDump(r io.Reader) (*Dump, error) {
	dec := cbor.NewDecoder(r)

	var head record
	err := dec.Decode(&head)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDump, err)
	}
	if head.Type != recHeader || head.Format != dumpFormat {
		return nil, fmt.Errorf("%w: missing header", ErrBadDump)
	}
	if head.Version != dumpVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadDump, head.Version)
	}

	d := &Dump{}
	for {
		var rec record
		err := dec.Decode(&rec)
		if err == io.EOF {
			return nil, fmt.Errorf("%w: missing trailer after %d tokens",
				ErrBadDump, len(d.Tokens))
		} else if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadDump, err)
		}

		switch rec.Type {
		case recToken:
			tok, err := rec.token()
			if err != nil {
				return nil, err
			}
			d.Tokens = append(d.Tokens, tok)
		case recTrailer:
			d.Files = rec.Files
			var extra record
			if err := dec.Decode(&extra); err != io.EOF {
				return nil, fmt.Errorf("%w: data after trailer", ErrBadDump)
			}
			return d, nil
		default:
			return nil, fmt.Errorf("%w: unexpected record type %d", ErrBadDump, rec.Type)
		}
	}
}

func (rec *record) token() (token.Token, error) {
	switch token.Kind(rec.Kind) {
	case token.Character:
		cat := catcode.Catcode(rec.Cat)
		if !cat.Valid() {
			return token.Token{}, fmt.Errorf("%w: invalid catcode %d", ErrBadDump, rec.Cat)
		}
		return token.Char(cat, rec.Char), nil
	case token.Active:
		return token.ActiveChar(rec.Char), nil
	case token.ControlSequence:
		return token.CS(rec.Name), nil
	}
	return token.Token{}, fmt.Errorf("%w: invalid token kind %d", ErrBadDump, rec.Kind)
}

// DumpFile expands the given file and writes the resulting tokens to
// w.  The engine runs in a separate goroutine while the tokens are
// being encoded.
func (job *Job) DumpFile(fileName string, w io.Writer) (err error) {
	dw, err := NewDumpWriter(w)
	if err != nil {
		return err
	}

	c := make(chan token.Token, 64)
	errChan := make(chan error, 1)
	go func() {
		e2 := job.RunFile(fileName, func(tok token.Token) error {
			c <- tok
			return nil
		})
		close(c)
		errChan <- e2
	}()

	for tok := range c {
		e2 := dw.WriteToken(tok)
		if err == nil {
			err = e2
		}
	}
	e2 := <-errChan
	if err == nil {
		err = e2
	}
	if err != nil {
		return err
	}

	files, err := SumFiles(job.Files)
	if err != nil {
		return err
	}
	return dw.Close(files)
}
