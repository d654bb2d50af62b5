// config.go - run configuration
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

// Package tex drives the expansion core: it sets up an engine from a
// configuration, feeds it input files and passes the resulting tokens
// on to a consumer.
package tex

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seehuhn/texcore/tex/catcode"
	"github.com/seehuhn/texcore/tex/engine"
)

// Config describes the initial state of an engine and how errors are
// handled.
type Config struct {
	Catcodes      catcode.File `yaml:"catcodes"`
	EndLineChar   int          `yaml:"endlinechar"`
	EscapeChar    int          `yaml:"escapechar"`
	MaxExpansions int          `yaml:"max_expansions,omitempty"`
	MaxNesting    int          `yaml:"max_nesting,omitempty"`
	MaxInputDepth int          `yaml:"max_input_depth,omitempty"`
	PassUndefined bool         `yaml:"pass_undefined,omitempty"`

	// Interaction is one of "batch", "nonstop", "scroll" or
	// "errorstop".  If empty, the engine default (errorstop) is used.
	Interaction string `yaml:"interaction,omitempty"`

	// MaxErrors is the number of errors after which expansion is
	// abandoned.  Zero means no limit.
	MaxErrors int `yaml:"max_errors,omitempty"`
}

// DefaultConfig returns the configuration used when no configuration
// file is given: plain TeX category codes and TeX's usual parameters.
func DefaultConfig() *Config {
	return &Config{
		Catcodes:    catcode.File{Base: "plain"},
		EndLineChar: '\r',
		EscapeChar:  '\\',
		MaxErrors:   100,
	}
}

// LoadConfig reads a configuration in YAML format.  Values not set in
// the file keep their defaults.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(cfg)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: %w", err)
	}
	err = cfg.Check()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile reads a configuration file in YAML format.
func LoadConfigFile(fileName string) (*Config, error) {
	fd, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	cfg, err := LoadConfig(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return cfg, nil
}

// Write stores the configuration in YAML format.
func (cfg *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(cfg)
	if err != nil {
		return err
	}
	return enc.Close()
}

// Check verifies that all values are in range.
func (cfg *Config) Check() error {
	_, err := cfg.Catcodes.Table()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.Interaction != "" {
		_, err = ParseInteraction(cfg.Interaction)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	switch {
	case cfg.MaxExpansions < 0:
		return fmt.Errorf("config: negative max_expansions")
	case cfg.MaxNesting < 0:
		return fmt.Errorf("config: negative max_nesting")
	case cfg.MaxInputDepth < 0:
		return fmt.Errorf("config: negative max_input_depth")
	case cfg.MaxErrors < 0:
		return fmt.Errorf("config: negative max_errors")
	}
	return nil
}

var interactionNames = []string{"batch", "nonstop", "scroll", "errorstop"}

// ParseInteraction converts the name of an interaction mode into the
// value used by \interactionmode.  Both "nonstop" and "nonstopmode"
// are accepted.
func ParseInteraction(name string) (int, error) {
	key := strings.TrimSuffix(strings.ToLower(name), "mode")
	for mode, n := range interactionNames {
		if n == key {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown interaction mode %q", name)
}

// InteractionName is the inverse of ParseInteraction.
func InteractionName(mode int) string {
	if mode < 0 || mode >= len(interactionNames) {
		return fmt.Sprintf("mode %d", mode)
	}
	return interactionNames[mode]
}

// NewEngine allocates an engine which is set up according to the
// configuration.  Debug output is sent to logger, which may be nil.
func (cfg *Config) NewEngine(logger *slog.Logger) (*engine.Engine, error) {
	codes, err := cfg.Catcodes.Table()
	if err != nil {
		return nil, err
	}

	e := engine.New(&engine.Options{
		MaxExpansions: cfg.MaxExpansions,
		MaxNesting:    cfg.MaxNesting,
		MaxInputDepth: cfg.MaxInputDepth,
		PassUndefined: cfg.PassUndefined,
		Logger:        logger,
	})
	for c, cat := range codes {
		e.Ctx.SetCatcode(c, cat, true)
	}
	e.Ctx.SetInt("endlinechar", cfg.EndLineChar, true)
	e.Ctx.SetInt("escapechar", cfg.EscapeChar, true)
	if cfg.Interaction != "" {
		mode, err := ParseInteraction(cfg.Interaction)
		if err != nil {
			return nil, err
		}
		e.Ctx.SetInt("interaction", mode, true)
	}
	return e, nil
}
