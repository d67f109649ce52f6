// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cmd implements taskctl, a small harness for running example Task
// pipelines against a taskpool.Pool from the command line.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	poolSize  int
	batchSize int
	verbose   bool
}

func (f *globalFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.poolSize, "pool-size", 0, "max concurrent runnables (0: GOMAXPROCS*4)")
	fs.IntVar(&f.batchSize, "batch-size", 512, "frames processed before a forced async yield")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log uncaught failures to stderr")
}

// NewRootCmd builds the taskctl command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "taskctl",
		Short: "Run example Task pipelines against a pooled scheduler",
	}
	flags.register(root.PersistentFlags())

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newBenchCmd(flags))
	return root
}
