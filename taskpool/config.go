// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package taskpool

import (
	"runtime"

	"github.com/google/uuid"

	"code.hybscloud.com/task"
	"code.hybscloud.com/task/tasklog"
)

// Config collects Pool's construction parameters. Built from functional
// options rather than a bare struct literal so cmd/taskctl's flags and a
// test's bespoke setup can each populate only what they care about.
type Config struct {
	poolSize   int
	batchSize  int
	logger     tasklog.Logger
	reportSink func(error)
}

// Option configures a Config.
type Option func(*Config)

// WithPoolSize bounds how many runnables a Pool executes concurrently.
func WithPoolSize(n int) Option {
	return func(c *Config) { c.poolSize = n }
}

// WithBatchSize sets how many program nodes the run-loop processes before
// yielding back to the scheduler — see task.ExecutionModel.
func WithBatchSize(n int) Option {
	return func(c *Config) { c.batchSize = n }
}

// WithLogger overrides the Logger failures are reported through. The
// default is tasklog.Nop.
func WithLogger(l tasklog.Logger) Option {
	return func(c *Config) { c.logger = l }
}

// WithReportSink overrides where uncaught run failures are reported
// entirely, bypassing the logger. Most callers want WithLogger instead.
func WithReportSink(f func(error)) Option {
	return func(c *Config) { c.reportSink = f }
}

func defaultConfig() Config {
	return Config{
		poolSize:  runtime.GOMAXPROCS(0) * 4,
		batchSize: 512,
		logger:    tasklog.Nop,
	}
}

// reportSinkFor builds the failure sink a Pool or test scheduler reports
// through: an explicit WithReportSink wins outright; otherwise every
// reported failure is tagged with a fresh correlation ID and logged through
// cfg.logger.
func (c Config) reportSinkFor() func(error) {
	if c.reportSink != nil {
		return c.reportSink
	}
	logger := c.logger
	if logger == nil {
		logger = tasklog.Nop
	}
	return func(err error) {
		tasklog.ReportedFailure(logger, uuid.NewString(), err)
	}
}

// batchExecutionModel forces a yield every batchSize frames, then resets.
type batchExecutionModel struct {
	batchSize int
}

func (m batchExecutionModel) NextFrameIndex(current int) int {
	if current == 0 {
		return m.batchSize
	}
	return current - 1
}

var _ task.ExecutionModel = batchExecutionModel{}
