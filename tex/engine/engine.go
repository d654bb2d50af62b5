// engine.go - the expansion engine
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

// Package engine implements macro expansion, conditionals, grouping
// and the primitives needed to drive them.
//
// An Engine reads tokens from an input.Stack and keeps its state in a
// scope.Context.  ExpandNext returns the next unexpandable token; Run
// also executes assignments and grouping commands and hands all
// remaining tokens to a consumer.
package engine

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/input"
	"github.com/seehuhn/texcore/tex/scope"
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

// Default limits used when the corresponding Options field is zero.
const (
	DefaultMaxExpansions = 100000
	DefaultMaxNesting    = 1000
)

// Options control the behaviour of an Engine.
type Options struct {
	// MaxExpansions limits the number of consecutive expansions
	// performed without producing an unexpandable token.
	MaxExpansions int

	// MaxNesting limits how deeply expansions can be nested, e.g. in
	// the tests of conditionals.
	MaxNesting int

	// MaxInputDepth limits the number of input levels.
	MaxInputDepth int

	// PassUndefined makes Run hand undefined control sequences to the
	// consumer instead of reporting an error.
	PassUndefined bool

	// Logger receives debug output about definitions, groups and
	// conditionals.  If nil, nothing is logged.
	Logger *slog.Logger
}

// Engine is the state of one interpreter run.
type Engine struct {
	Ctx   *scope.Context
	In    *input.Stack
	RunID uuid.UUID

	opts    Options
	log     *slog.Logger
	conds   []*conditional
	nesting int

	relax     *Primitive
	endcsname *Primitive
}

// New creates an engine with all core primitives defined and an empty
// input stack.
func New(opts *Options) *Engine {
	if opts == nil {
		opts = &Options{}
	}
	e := &Engine{
		Ctx:   scope.New(),
		RunID: uuid.New(),
		opts:  *opts,
	}
	if e.opts.MaxExpansions <= 0 {
		e.opts.MaxExpansions = DefaultMaxExpansions
	}
	if e.opts.MaxNesting <= 0 {
		e.opts.MaxNesting = DefaultMaxNesting
	}
	e.In = input.New(e.Ctx)
	e.In.MaxDepth = e.opts.MaxInputDepth

	logger := e.opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e.log = logger.With("run", e.RunID.String())

	e.addBuiltins()
	return e
}

// Close releases all input files.
func (e *Engine) Close() error {
	return e.In.Close()
}

func csKey(tok token.Token) scope.Key {
	if tok.Kind == token.Active {
		return scope.Key{NS: scope.NSActive, Index: int(tok.Char)}
	}
	return scope.Key{NS: scope.NSMeaning, Name: tok.Name}
}

// Meaning returns the current meaning of a token.  Character tokens
// stand for themselves.
func (e *Engine) Meaning(tok token.Token) Meaning {
	switch tok.Kind {
	case token.Character:
		return Meaning{Kind: CharMeaning, Char: tok.Plain()}
	case token.ControlSequence, token.Active:
		val, ok := e.Ctx.Lookup(csKey(tok))
		if ok {
			return val.(Meaning)
		}
	}
	return Meaning{}
}

// Define binds a meaning to a control sequence or active character.
func (e *Engine) Define(tok token.Token, m Meaning, global bool) {
	var val any
	if m.Kind != Undefined {
		val = m
	}
	e.Ctx.Assign(csKey(tok), val, global)
	e.log.Debug("define", "name", describeToken(tok), "meaning", m.String(), "global", global)
}

// Register makes a primitive available under the given name.
func (e *Engine) Register(name string, p *Primitive) {
	if p.Name == "" {
		p.Name = name
	}
	e.Ctx.Assign(csKey(token.CS(name)), Meaning{Kind: PrimitiveMeaning, Prim: p}, true)
}

// Interaction returns the current interaction mode, from 0 (batch
// mode) to 3 (error stop mode).
func (e *Engine) Interaction() int {
	return e.Ctx.Int("interaction")
}

// ExpandNext returns the next unexpandable token from the input,
// expanding macros and expandable primitives as needed.  Tokens marked
// by \noexpand are returned unexpanded, with their mark still set.
// When the input is exhausted, input.ErrEndOfInput is returned.
func (e *Engine) ExpandNext() (token.Token, error) {
	return e.expandNext(false)
}

func (e *Engine) expandNext(edef bool) (token.Token, error) {
	e.nesting++
	defer func() { e.nesting-- }()
	if e.nesting > e.opts.MaxNesting {
		return token.Token{}, e.errorf(texerr.RecursionLimitExceeded,
			"expansion nested more than %d levels deep", e.opts.MaxNesting)
	}

	count := 0
	for {
		tok, err := e.In.Next()
		if err != nil {
			return token.Token{}, err
		}
		if tok.NoExpand {
			return tok, nil
		}
		m := e.Meaning(tok)
		if !m.expandable(edef) {
			return tok, nil
		}
		count++
		if count > e.opts.MaxExpansions {
			return token.Token{}, e.errorf(texerr.RecursionLimitExceeded,
				"more than %d expansions without result, while expanding %s",
				e.opts.MaxExpansions, describeToken(tok))
		}
		err = e.expand(tok, m)
		if err != nil {
			return token.Token{}, err
		}
	}
}

func (e *Engine) expand(tok token.Token, m Meaning) error {
	switch m.Kind {
	case MacroMeaning:
		return e.expandMacro(tok, m.Macro)
	case PrimitiveMeaning:
		p := m.Prim
		if p.Test != nil || p.Case != nil {
			return e.conditional(p, false)
		}
		return p.Expand(e, tok)
	}
	return nil
}

// expandOnce expands tok a single level, or puts it back onto the
// input if it is not expandable.
func (e *Engine) expandOnce(tok token.Token) error {
	m := e.Meaning(tok)
	if tok.NoExpand || !m.expandable(false) {
		e.In.Unread(tok)
		return nil
	}
	return e.expand(tok, m)
}

// Run reads tokens until the input is exhausted.  Assignments,
// definitions and grouping commands are carried out; all other
// unexpandable tokens are passed to emit.  If an error is returned,
// Run can be called again to continue after the offending token.
func (e *Engine) Run(emit func(token.Token) error) error {
	for {
		tok, err := e.ExpandNext()
		if err == input.ErrEndOfInput {
			return e.finish()
		} else if err != nil {
			return err
		}
		err = e.execute(tok, emit)
		if err != nil {
			return err
		}
	}
}

func (e *Engine) execute(tok token.Token, emit func(token.Token) error) error {
	if tok.NoExpand {
		tok = tok.Plain()
		if e.Meaning(tok).expandable(false) {
			// a \noexpand-ed token acts like \relax
			return nil
		}
	}

	switch tok.Kind {
	case token.Character:
		return e.executeChar(tok, tok, emit)
	case token.ControlSequence, token.Active:
		m := e.Meaning(tok)
		switch m.Kind {
		case Undefined:
			if e.opts.PassUndefined {
				return emit(tok)
			}
			return e.undefined(tok)
		case CharMeaning:
			return e.executeChar(tok, m.Char, emit)
		case PrimitiveMeaning:
			p := m.Prim
			switch {
			case p.Prefix != 0:
				return e.prefixed(p.Prefix)
			case p.Exec != nil:
				return p.Exec(e, tok, 0)
			case p.Value != nil:
				return e.errorf(texerr.Syntax, "you can't use %s here", describeToken(tok))
			}
		}
	}
	return emit(tok)
}

func (e *Engine) executeChar(tok, char token.Token, emit func(token.Token) error) error {
	switch char.Cat {
	case catcode.BeginGroup:
		e.beginGroup(scope.SimpleGroup)
		return nil
	case catcode.EndGroup:
		return e.endGroup(scope.SimpleGroup, tok)
	}
	return emit(char)
}

func (e *Engine) prefixed(pfx Prefix) error {
	for {
		tok, err := e.nextNonBlankNonRelax("prefixed command")
		if err != nil {
			return err
		}
		m := e.Meaning(tok)
		if m.Kind == PrimitiveMeaning {
			p := m.Prim
			if p.Prefix != 0 {
				pfx |= p.Prefix
				continue
			}
			if p.Exec != nil && (p.Assignment || p.Definition) {
				if pfx&^Global != 0 && !p.Definition {
					e.In.Unread(tok)
					return e.errorf(texerr.Syntax,
						"you can't use \\long, \\outer or \\protected with %s",
						describeToken(tok))
				}
				return p.Exec(e, tok, pfx)
			}
		}
		e.In.Unread(tok)
		return e.errorf(texerr.Syntax, "you can't use a prefix with %s", describeToken(tok))
	}
}

func (e *Engine) beginGroup(kind scope.GroupKind) {
	level := e.Ctx.OpenGroup(kind, e.pos())
	e.log.Debug("begin group", "kind", kind.String(), "level", level)
}

func (e *Engine) endGroup(kind scope.GroupKind, tok token.Token) error {
	if e.Ctx.Level() == 0 {
		return e.errorf(texerr.UnbalancedGroup, "too many %s", describeToken(tok))
	}
	if top := e.Ctx.TopKind(); top != kind {
		return e.errorf(texerr.UnbalancedGroup, "extra %s: the current group is a %s",
			describeToken(tok), top)
	}
	_, after, err := e.Ctx.CloseGroup()
	if err != nil {
		return err
	}
	e.log.Debug("end group", "kind", kind.String(), "level", e.Ctx.Level())
	return e.In.PushBack(after, "<aftergroup>")
}

// finish checks that no group or conditional is left open at the end
// of input.  Open groups are closed, so that a second call succeeds.
func (e *Engine) finish() error {
	if n := len(e.conds); n > 0 {
		c := e.conds[n-1]
		e.conds = nil
		err := texerr.EndOfInput(c.name)
		err.Message = "input ended while " + c.name + " on line " +
			strconv.Itoa(c.pos.Line) + " was incomplete"
		err.Stack = []texerr.Frame{c.pos}
		return err
	}
	if n := e.Ctx.Level(); n > 0 {
		g := e.Ctx.Top()
		for e.Ctx.Level() > 0 {
			e.Ctx.CloseGroup()
		}
		err := texerr.EndOfInput(g.Kind.String())
		err.Message = "input ended with " + strconv.Itoa(n) + " open group(s)"
		err.Stack = []texerr.Frame{g.Origin}
		return err
	}
	return nil
}

// ScanBox reads the next token, which must be a box producing
// primitive, and returns the box it produces.
func (e *Engine) ScanBox() (any, error) {
	tok, err := e.nextNonBlankNonRelax("box")
	if err != nil {
		return nil, err
	}
	m := e.Meaning(tok)
	if m.Kind == PrimitiveMeaning && m.Prim.Box != nil {
		return m.Prim.Box(e)
	}
	e.In.Unread(tok)
	return nil, e.errorf(texerr.Syntax, "a box was supposed to be here, found %s",
		describeToken(tok))
}

func (e *Engine) pos() texerr.Frame {
	frames := e.In.Frames()
	if len(frames) == 0 {
		return texerr.Frame{}
	}
	return frames[0]
}

func (e *Engine) errorf(kind texerr.Kind, format string, args ...any) *texerr.Error {
	return e.In.MakeError(kind, format, args...)
}

func (e *Engine) endOfInput(construct string) error {
	return texerr.EndOfInput(construct).At(e.In.Frames())
}

// next returns the next unexpanded token.  The end of input is an
// error while scanning the named construct.
func (e *Engine) next(construct string) (token.Token, error) {
	tok, err := e.In.Next()
	if errors.Is(err, input.ErrEndOfInput) {
		return tok, e.endOfInput(construct)
	}
	return tok, err
}

// nextX is like next, but expands the input.
func (e *Engine) nextX(construct string) (token.Token, error) {
	tok, err := e.ExpandNext()
	if errors.Is(err, input.ErrEndOfInput) {
		return tok, e.endOfInput(construct)
	}
	return tok, err
}

func (e *Engine) nextNonBlank(construct string) (token.Token, error) {
	for {
		tok, err := e.nextX(construct)
		if err != nil || !tok.IsSpace() {
			return tok, err
		}
	}
}

func (e *Engine) nextNonBlankNonRelax(construct string) (token.Token, error) {
	for {
		tok, err := e.nextNonBlank(construct)
		if err != nil {
			return tok, err
		}
		if tok.NoExpand {
			continue
		}
		if m := e.Meaning(tok); m.Kind == PrimitiveMeaning && m.Prim == e.relax {
			continue
		}
		return tok, nil
	}
}

func isEOF(err error) bool {
	return errors.Is(err, input.ErrEndOfInput)
}

// describeToken formats a token for use in error messages.
func describeToken(tok token.Token) string {
	return strings.TrimSuffix(tok.Plain().String(), " ")
}
