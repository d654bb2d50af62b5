// main.go - command line interface to the expansion core
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

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/seehuhn/texcore/tex"
	"github.com/seehuhn/texcore/tex/engine"
)

// errAborted is returned when the user stops a run after an error.
var errAborted = errors.New("aborted by user")

// settings holds the flags shared by all subcommands.
type settings struct {
	configFile    string
	interaction   string
	passUndefined bool
	debug         bool
}

func main() {
	s := &settings{}

	rootCmd := &cobra.Command{
		Use:           "texcore",
		Short:         "Expand TeX macros and conditionals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&s.configFile, "config", "c", "", "configuration file (YAML)")
	flags.StringVar(&s.interaction, "interaction", "",
		"interaction mode: batch, nonstop, scroll or errorstop")
	flags.BoolVar(&s.passUndefined, "pass-undefined", false,
		"pass undefined control sequences through")
	flags.BoolVar(&s.debug, "debug", false, "enable debug output")

	rootCmd.AddCommand(
		newExpandCmd(s),
		newShowCmd(),
		newBatchCmd(s),
		newWatchCmd(s),
		newCatcodesCmd(s),
		newConfigCmd(s),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

// config returns the configuration file contents, overridden by the
// command line flags.
func (s *settings) config() (*tex.Config, error) {
	cfg := tex.DefaultConfig()
	if s.configFile != "" {
		var err error
		cfg, err = tex.LoadConfigFile(s.configFile)
		if err != nil {
			return nil, err
		}
	}
	if s.interaction != "" {
		_, err := tex.ParseInteraction(s.interaction)
		if err != nil {
			return nil, err
		}
		cfg.Interaction = s.interaction
	}
	if cfg.Interaction == "" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			cfg.Interaction = "errorstop"
		} else {
			cfg.Interaction = "nonstop"
		}
	}
	if s.passUndefined {
		cfg.PassUndefined = true
	}
	return cfg, nil
}

func (s *settings) logger() *slog.Logger {
	if !s.debug {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func (s *settings) job(cfg *tex.Config) *tex.Job {
	return &tex.Job{
		Config:  cfg,
		Logger:  s.logger(),
		OnError: errorHandler(cfg, os.Stdin, os.Stderr),
	}
}

// errorHandler reports errors to w.  In errorstop mode the user is
// asked whether to continue.
func errorHandler(cfg *tex.Config, in io.Reader, w io.Writer) tex.ErrorHandler {
	mode, _ := tex.ParseInteraction(cfg.Interaction)
	var answers *bufio.Reader
	return func(err error) error {
		fmt.Fprintf(w, "! %v\n", err)
		if mode != engine.ErrorStopMode {
			return nil
		}
		if answers == nil {
			answers = bufio.NewReader(in)
		}
		fmt.Fprint(w, "continue? [Y/n] ")
		line, e2 := answers.ReadString('\n')
		if e2 != nil && line == "" {
			return errAborted
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "n", "no", "x", "q":
			return errAborted
		}
		return nil
	}
}

// openOutput returns the output file, or stdout if name is empty or
// "-".
func openOutput(name string) (io.WriteCloser, error) {
	if name == "" || name == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(name)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
