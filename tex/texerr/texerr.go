// texerr.go - error values reported by the expansion core
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

// Package texerr defines the errors reported while tokenizing and
// expanding TeX input.
//
// Every error is an *Error with a Kind.  Errors can be classified
// using errors.Is together with the sentinel values of this package:
//
//	if errors.Is(err, texerr.ErrRunawayArgument) {
//	    ...
//	}
package texerr

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the different classes of errors.
type Kind int

// The error kinds used by the expansion core.
const (
	Lexical Kind = iota + 1
	UnexpectedEndOfInput
	UnbalancedGroup
	RunawayConditional
	RunawayArgument
	UndefinedControlSequence
	RecursionLimitExceeded
	Syntax
	Forbidden
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case UnexpectedEndOfInput:
		return "unexpected end of input"
	case UnbalancedGroup:
		return "unbalanced group"
	case RunawayConditional:
		return "runaway conditional"
	case RunawayArgument:
		return "runaway argument"
	case UndefinedControlSequence:
		return "undefined control sequence"
	case RecursionLimitExceeded:
		return "recursion limit exceeded"
	case Syntax:
		return "syntax error"
	case Forbidden:
		return "forbidden control sequence"
	default:
		return "error kind " + strconv.Itoa(int(k))
	}
}

// Sentinel values for use with errors.Is.
var (
	ErrLexical                  = &Error{Kind: Lexical}
	ErrUnexpectedEndOfInput     = &Error{Kind: UnexpectedEndOfInput}
	ErrUnbalancedGroup          = &Error{Kind: UnbalancedGroup}
	ErrRunawayConditional       = &Error{Kind: RunawayConditional}
	ErrRunawayArgument          = &Error{Kind: RunawayArgument}
	ErrUndefinedControlSequence = &Error{Kind: UndefinedControlSequence}
	ErrRecursionLimitExceeded   = &Error{Kind: RecursionLimitExceeded}
	ErrSyntax                   = &Error{Kind: Syntax}
	ErrForbidden                = &Error{Kind: Forbidden}
)

// Frame describes one input level at the time an error occurred.
type Frame struct {
	Name    string
	Line    int
	Col     int
	Context string
}

func (f Frame) String() string {
	res := f.Name + ", line " + strconv.Itoa(f.Line)
	if f.Col > 0 {
		res += ", column " + strconv.Itoa(f.Col)
	}
	return res
}

// Error is the error type used by all packages of the expansion core.
type Error struct {
	Kind    Kind
	Message string

	// Construct names the syntactic construct which was being scanned
	// when the error occurred, e.g. "argument of \foo".
	Construct string

	// Stack lists the input positions, innermost first.
	Stack []Frame

	// Suggestions optionally lists similar control sequence names.
	Suggestions []string
}

// New allocates a new error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// EndOfInput returns the error for input which ended while the named
// construct was still being scanned.
func EndOfInput(construct string) *Error {
	return &Error{
		Kind:      UnexpectedEndOfInput,
		Message:   "unexpected end of input while scanning " + construct,
		Construct: construct,
	}
}

// At attaches position information to the error, unless the error
// already carries a position.  The receiver is returned to allow
// chaining.
func (err *Error) At(stack []Frame) *Error {
	if len(err.Stack) == 0 {
		err.Stack = stack
	}
	return err
}

func (err *Error) Error() string {
	msg := err.Message
	if msg == "" {
		msg = err.Kind.String()
	}
	res := []string{msg}
	if len(err.Suggestions) > 0 {
		res = append(res, " (did you mean ",
			strings.Join(err.Suggestions, ", "), "?)")
	}
	for i, frame := range err.Stack {
		if i > 0 {
			res = append(res, ", included from")
		}
		res = append(res, "\n    ", frame.String())
		if frame.Context != "" {
			res = append(res, fmt.Sprintf(", before %q", frame.Context))
		}
	}
	return strings.Join(res, "")
}

// Is reports whether target is a sentinel of the same kind.  This
// makes errors.Is(err, texerr.ErrSyntax) and similar work.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t == err {
		return true
	}
	return t.Message == "" && t.Kind == err.Kind
}
