// Copyright 2024 Alexandre Mahdhaoui
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

// Package logging configures structured logging for the vmremedy binary.
// It uses log/slog as the standard library logger and bridges the
// controller-runtime/client-go machinery to logr via zap so nothing logs
// through an unconfigured path.
package logging

import (
	"log/slog"
	"os"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Options configures the logger behavior.
type Options struct {
	// Development switches to a human-readable text handler and verbose
	// output.
	Development bool

	// Level sets the minimum log level. Defaults to slog.LevelInfo.
	Level slog.Level
}

// Setup configures the default slog logger and the controller-runtime
// logger, and returns the logr.Logger handed to components. Call it once,
// early in main, before any component logs.
func Setup(opts Options) logr.Logger {
	var handler slog.Handler
	if opts.Development {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: opts.Level,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: opts.Level,
		})
	}
	slog.SetDefault(slog.New(handler))

	// client-go and controller-runtime log through logr; route them to zap
	// so their output is structured too.
	logger := zap.New(zap.UseFlagOptions(&zap.Options{
		Development: opts.Development,
	}))
	ctrl.SetLogger(logger)

	return logger
}
