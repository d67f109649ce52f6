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

func newRunCmd(flags *globalFlags) *cobra.Command {
	var delayMs int64
	var left, right int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build and run a tiny example pipeline: a delay, then a mapBoth",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool := buildPool(flags)
			defer pool.Close()

			delay := time.Duration(delayMs) * time.Millisecond
			a := task.Delay(delay, task.Now(left))
			b := task.Delay(delay, task.Now(right))
			pipeline := task.ZipWith(a, b, func(x, y int) int { return x + y })

			future, cancelToken := task.RunAsFuture(pipeline, pool)
			defer cancelToken.Cancel()

			attempt := future.Wait()
			if v, ok := attempt.Value(); ok {
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}
			return attempt.Err()
		},
	}

	cmd.Flags().Int64Var(&delayMs, "delay-ms", 10, "delay before each branch resolves")
	cmd.Flags().IntVar(&left, "left", 21, "first operand")
	cmd.Flags().IntVar(&right, "right", 21, "second operand")
	return cmd
}
