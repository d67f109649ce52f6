// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tasklog is the structured-logging facade the taskpool scheduler
// and cmd/taskctl write uncaught-failure and diagnostic records through.
package tasklog

import "go.uber.org/zap"

// Field is a structured logging key-value pair.
type Field = zap.Field

// String and Error build Fields for the common cases
// Logger callers need without importing zap directly.
var (
	String = zap.String
	Error  = zap.Error
)

// Logger is the minimal structured-logging surface the rest of the module
// depends on, kept narrow so a caller can plug in any backend — or the
// no-op one tests default to — without the module caring which.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// zapLogger adapts *zap.Logger to Logger.
type zapLogger struct {
	z *zap.Logger
}

// NewZapLogger wraps an existing *zap.Logger.
func NewZapLogger(z *zap.Logger) Logger {
	return zapLogger{z: z}
}

func (l zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, fields...) }
func (l zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, fields...) }
func (l zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, fields...) }
func (l zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, fields...) }

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}

// Nop is a Logger that discards everything; the default until a caller
// installs a real one.
var Nop Logger = nopLogger{}

// Default returns a production-ready Logger backed by zap's default
// production configuration.
func Default() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		return Nop
	}
	return NewZapLogger(z)
}

// ReportedFailure logs an uncaught run failure at error level with two
// fields: the given correlation ID (under the key run_id) and err. No
// fatal/non-fatal classification is logged.
func ReportedFailure(l Logger, runID string, err error) {
	if l == nil {
		l = Nop
	}
	l.Error("task: uncaught failure", String("run_id", runID), Error(err))
}
