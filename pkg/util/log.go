// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var gLogger atomic.Pointer[zap.Logger]

func init() {
	logger, err := newLogger("info", "console")
	if err != nil {
		logger = zap.NewNop()
	}
	gLogger.Store(logger)
}

func newLogger(level string, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if format == "" {
		format = "console"
	}
	cfg.Encoding = format
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build(zap.AddCallerSkip(1))
}

// InitLogger replaces the process logger.
func InitLogger(cfg *LogConfig) error {
	logger, err := newLogger(cfg.Level, cfg.Format)
	if err != nil {
		return err
	}
	old := gLogger.Swap(logger)
	_ = old.Sync()
	return nil
}

func Logger() *zap.Logger {
	return gLogger.Load()
}

func Debug(msg string, fields ...zap.Field) {
	gLogger.Load().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	gLogger.Load().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	gLogger.Load().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	gLogger.Load().Error(msg, fields...)
}
