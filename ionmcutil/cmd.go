/*
Copyright © 2026 the ionmc authors.
This file is part of ionmc.

ionmc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ionmc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ionmc.  If not, see <http://www.gnu.org/licenses/>.
*/

package ionmcutil

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// options are the command line options. Each is registered on the root
// flag set.
var options = []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}{
	{
		name: "params",
		usage: `
              params specifies the parameter file containing the
              simulation parameters.`,
		shorthand:  "p",
		defaultVal: "",
		flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
	},
	{
		name: "verbose",
		usage: `
              verbose sets the logging level to the lowest possible
              value so more output is written to the log.`,
		shorthand:  "v",
		defaultVal: false,
		flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
	},
	{
		name: "logfile",
		usage: `
              logfile redirects the program log to a file with the
              given name instead of the standard output.`,
		shorthand:  "l",
		defaultVal: "",
		flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
	},
	{
		name: "threads",
		usage: `
              threads is the number of parallel threads to use for
              photon shooting.`,
		shorthand:  "t",
		defaultVal: 1,
		flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
	},
	{
		name: "dry-run",
		usage: `
              dry-run reads the parameter file and sets up all the
              components, but exits before initializing the density
              grid. Ideal for checking whether a parameter file will
              work.`,
		shorthand:  "n",
		defaultVal: false,
		flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
	},
	{
		name: "dirty",
		usage: `
              dirty allows running a build made from a modified source
              tree. This is disabled by default, since such a build
              does not correspond to a unique repository revision and
              its results cannot be reproduced exactly.`,
		shorthand:  "d",
		defaultVal: false,
		flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
	},
}

// Root is the main command.
var Root = &cobra.Command{
	Use:           "ionmc",
	Short:         "ionmc runs a 3D Monte Carlo photoionization simulation",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := RunOptions{}
		var err error
		if opts.Params, err = flags.GetString("params"); err != nil {
			return err
		}
		if opts.Verbose, err = flags.GetBool("verbose"); err != nil {
			return err
		}
		if opts.LogFile, err = flags.GetString("logfile"); err != nil {
			return err
		}
		if opts.Threads, err = flags.GetInt("threads"); err != nil {
			return err
		}
		if opts.DryRun, err = flags.GetBool("dry-run"); err != nil {
			return err
		}
		if opts.Dirty, err = flags.GetBool("dirty"); err != nil {
			return err
		}
		return Run(opts)
	},
}

func init() {
	for _, o := range options {
		for _, fs := range o.flagsets {
			switch v := o.defaultVal.(type) {
			case string:
				fs.StringP(o.name, o.shorthand, v, o.usage)
			case bool:
				fs.BoolP(o.name, o.shorthand, v, o.usage)
			case int:
				fs.IntP(o.name, o.shorthand, v, o.usage)
			default:
				panic(fmt.Sprintf("ionmcutil: unsupported option type %T", o.defaultVal))
			}
		}
	}
}

// RunOptions are the resolved command line options.
type RunOptions struct {
	Params  string
	Verbose bool
	LogFile string
	Threads int
	DryRun  bool
	Dirty   bool
}

// Run executes a full simulation (or a dry run) with the given options.
func Run(opts RunOptions) error {
	if opts.Params == "" {
		return fmt.Errorf("ionmcutil: no parameter file given; use --params")
	}

	log, err := NewLogger(opts.Verbose, opts.LogFile)
	if err != nil {
		return err
	}
	LogBanner(log)

	if DirtyBuild == "true" {
		log.Warn("this is a dirty build: the source tree had uncommitted changes")
		if !opts.Dirty {
			return fmt.Errorf("ionmcutil: running a dirty build is disabled by default; pass --dirty to run anyway")
		}
		log.Warn("dirty running is enabled")
	}

	start := time.Now()

	cfg, err := LoadParams(opts.Params)
	if err != nil {
		return err
	}
	s, err := NewSimulation(cfg, opts.Threads, log)
	if err != nil {
		return err
	}

	dump, err := WriteUsedValues(cfg, cfg.GetString("densitygridwriter.folder"))
	if err != nil {
		return err
	}
	log.Infof("wrote used parameters to %s", dump)

	if opts.DryRun {
		log.Warn("dry run requested, program will now halt")
		return nil
	}

	if err := s.Init(); err != nil {
		return err
	}
	if err := s.Run(); err != nil {
		return err
	}
	if err := s.Cleanup(); err != nil {
		return err
	}

	log.Infof("total program time: %v", time.Since(start).Round(time.Millisecond))
	log.Infof("total photon shooting time: %v", s.ShootTime.Round(time.Millisecond))
	return nil
}
