// catcodes.go - the catcodes and config subcommands
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

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/seehuhn/texcore/tex/catcode"
)

func newCatcodesCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "catcodes",
		Short: "Print the initial category code table in YAML format",
		Long: `Print all category code assignments which differ from the
INITEX values, as determined by the configuration.  The output can be
used as the catcodes section of a configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.config()
			if err != nil {
				return err
			}
			table, err := cfg.Catcodes.Table()
			if err != nil {
				return err
			}
			return catcode.Dump(os.Stdout, "initex", table)
		},
	}
}

func newConfigCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration in YAML format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.config()
			if err != nil {
				return err
			}
			return cfg.Write(os.Stdout)
		},
	}
}
