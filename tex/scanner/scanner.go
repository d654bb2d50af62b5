// scanner.go -
// Copyright (C) 2016, 2026  Jochen Voss <voss@seehuhn.de>
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

// Package scanner reads named character sources line by line.
package scanner

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Scanner reads the lines of a single input file or buffer.
type Scanner struct {
	// Name identifies the source in error messages.
	Name string

	r    *bufio.Reader
	fd   io.Closer
	line int
	err  error
}

// New creates a Scanner which reads from r.  The argument `name` is
// used to identify the input in error messages and should be a short,
// human-readable string.
func New(r io.Reader, name string) *Scanner {
	return &Scanner{
		Name: name,
		r:    bufio.NewReader(r),
	}
}

// FromString creates a Scanner for in-memory data.
func FromString(text, name string) *Scanner {
	return New(strings.NewReader(text), name)
}

// Open creates a Scanner for the given file.  The file is closed
// once all lines have been read, or when Close is called.
func Open(fileName string) (*Scanner, error) {
	fd, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	scan := New(fd, filepath.Base(fileName))
	scan.fd = fd
	return scan, nil
}

// ReadLine returns the next physical line, without the line
// terminator.  Lines can be terminated by "\n", "\r\n" or "\r".  At the
// end of input, io.EOF is returned.
func (scan *Scanner) ReadLine() ([]rune, error) {
	if scan.err != nil {
		return nil, scan.err
	}

	var line []rune
	for {
		c, _, err := scan.r.ReadRune()
		if err == io.EOF && len(line) > 0 {
			scan.line++
			return line, nil
		} else if err != nil {
			scan.fail(err)
			return nil, err
		}

		switch c {
		case '\n':
			scan.line++
			return line, nil
		case '\r':
			next, _, err := scan.r.ReadRune()
			if err == nil && next != '\n' {
				scan.r.UnreadRune()
			}
			scan.line++
			return line, nil
		}
		line = append(line, c)
	}
}

func (scan *Scanner) fail(err error) {
	scan.err = err
	if scan.fd != nil {
		scan.fd.Close()
		scan.fd = nil
	}
}

// Line returns the number of the line most recently returned by
// ReadLine.  Lines are numbered starting at 1.
func (scan *Scanner) Line() int {
	return scan.line
}

// Close closes the underlying file, if any.
func (scan *Scanner) Close() error {
	if scan.err == nil {
		scan.err = io.EOF
	}
	if scan.fd == nil {
		return nil
	}
	err := scan.fd.Close()
	scan.fd = nil
	return err
}
