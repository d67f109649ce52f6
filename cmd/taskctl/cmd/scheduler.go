// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cmd

import (
	"code.hybscloud.com/task/tasklog"
	"code.hybscloud.com/task/taskpool"
)

func buildPool(flags *globalFlags) *taskpool.Pool {
	opts := []taskpool.Option{taskpool.WithBatchSize(flags.batchSize)}
	if flags.poolSize > 0 {
		opts = append(opts, taskpool.WithPoolSize(flags.poolSize))
	}
	if flags.verbose {
		opts = append(opts, taskpool.WithLogger(tasklog.Default()))
	}
	return taskpool.NewPool(opts...)
}
