// Copyright 2024 The OpenIndex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openindex

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logMu      sync.RWMutex
	processLog *zap.Logger
)

// Log returns the process-wide logger. Before SetupLogging is called it
// returns a production logger writing to stderr, so library consumers
// get sane output without any setup.
func Log() *zap.Logger {
	logMu.RLock()
	l := processLog
	logMu.RUnlock()
	if l != nil {
		return l
	}

	logMu.Lock()
	defer logMu.Unlock()
	if processLog == nil {
		processLog = newDefaultLogger(false)
	}
	return processLog
}

// SetupLogging (re)configures the process logger. With debug enabled the
// console encoder is used and debug-level entries are emitted.
func SetupLogging(debug bool) *zap.Logger {
	logMu.Lock()
	defer logMu.Unlock()
	processLog = newDefaultLogger(debug)
	return processLog
}

func newDefaultLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		// a static config only fails on bad output paths; stderr is safe
		return zap.NewNop()
	}
	return logger
}
