// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"code.hybscloud.com/task"
)

func newBenchCmd(flags *globalFlags) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Fold n flatMaps over Now(0) and confirm the run-loop stays stack-safe",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool := buildPool(flags)
			defer pool.Close()

			p := task.Now(0)
			for i := 0; i < n; i++ {
				p = task.FlatMap(p, func(x int) task.Task[int] {
					return task.Now(x + 1)
				})
			}

			start := time.Now()
			future, cancelToken := task.RunAsFuture(p, pool)
			defer cancelToken.Cancel()
			attempt := future.Wait()
			elapsed := time.Since(start)

			v, ok := attempt.Value()
			if !ok {
				return attempt.Err()
			}
			if v != n {
				return fmt.Errorf("taskctl: bench expected %d, got %d", n, v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed %d flatMaps in %s\n", n, elapsed)
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 1_000_000, "number of chained flatMaps")
	return cmd
}
