// expand.go - running the engine over input files
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
	"log/slog"

	"github.com/seehuhn/texcore/tex/engine"
	"github.com/seehuhn/texcore/tex/texerr"
	"github.com/seehuhn/texcore/tex/token"
)

// ErrorHandler is called for every error reported by the engine.  If
// it returns nil, expansion continues after the offending token.
// Otherwise expansion stops and the returned error is passed on to the
// caller.
type ErrorHandler func(err error) error

// ErrTooManyErrors is returned once the number of errors reaches the
// configured maximum.
var ErrTooManyErrors = errors.New("too many errors")

// Job holds the settings for one expansion run.
type Job struct {
	Config  *Config
	Logger  *slog.Logger
	OnError ErrorHandler

	// Files lists the files which were read, main file first.  This is
	// filled in by Run.
	Files []string

	// Errors counts the errors which were reported to OnError.
	Errors int
}

// Expand reads the given file and passes the expanded tokens to emit.
// If cfg is nil, the default configuration is used.
func Expand(cfg *Config, fileName string, emit func(token.Token) error, onError ErrorHandler) error {
	job := &Job{Config: cfg, OnError: onError}
	return job.RunFile(fileName, emit)
}

// ExpandString is like Expand, but reads its input from a string.
func ExpandString(cfg *Config, text string, emit func(token.Token) error, onError ErrorHandler) error {
	job := &Job{Config: cfg, OnError: onError}
	return job.RunString(text, "<string>", emit)
}

// RunFile expands the contents of a file.
func (job *Job) RunFile(fileName string, emit func(token.Token) error) error {
	return job.run(func(e *engine.Engine) error {
		err := e.In.Include(fileName)
		if err != nil {
			return fmt.Errorf("cannot read input: %w", err)
		}
		return nil
	}, emit)
}

// RunString expands text.  The name is used in error messages.
func (job *Job) RunString(text, name string, emit func(token.Token) error) error {
	return job.run(func(e *engine.Engine) error {
		e.In.PushString(text, name)
		return nil
	}, emit)
}

func (job *Job) run(setup func(*engine.Engine) error, emit func(token.Token) error) (err error) {
	cfg := job.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	e, err := cfg.NewEngine(job.Logger)
	if err != nil {
		return err
	}
	defer func() {
		e2 := e.Close()
		if err == nil {
			err = e2
		}
	}()

	err = setup(e)
	if err != nil {
		return err
	}
	defer func() {
		job.Files = e.In.Files()
	}()

	for {
		err = e.Run(emit)
		if err == nil {
			return nil
		}

		var texErr *texerr.Error
		if !errors.As(err, &texErr) {
			return err
		}
		if e.Interaction() == engine.BatchMode {
			return err
		}
		job.Errors++
		if job.OnError == nil {
			return err
		}
		e2 := job.OnError(err)
		if e2 != nil {
			return e2
		}
		if cfg.MaxErrors > 0 && job.Errors >= cfg.MaxErrors {
			return fmt.Errorf("%w (%d), last: %w", ErrTooManyErrors, job.Errors, err)
		}
	}
}
