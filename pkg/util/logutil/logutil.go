// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package logutil holds the process-wide logger. It defaults to a no-op
// logger; embedding applications install a real one at startup.
package logutil

import (
	"context"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger.
var Logger zerolog.Logger

func init() {
	SetGlobalLogger(zerolog.Nop())
}

// SetGlobalLogger replaces the process-wide logger.
func SetGlobalLogger(logger zerolog.Logger) {
	Logger = logger
	zerolog.DefaultContextLogger = &Logger
}

// With starts a child logger context.
func With() zerolog.Context { return Logger.With() }

// Err logs err at error level, or at info level when err is nil.
func Err(err error) *zerolog.Event { return Logger.Err(err) }

// Debug starts a debug-level event.
func Debug() *zerolog.Event { return Logger.Debug() }

// Info starts an info-level event.
func Info() *zerolog.Event { return Logger.Info() }

// Warn starts a warn-level event.
func Warn() *zerolog.Event { return Logger.Warn() }

// Error starts an error-level event.
func Error() *zerolog.Event { return Logger.Error() }

// Ctx returns the logger attached to ctx.
func Ctx(ctx context.Context) *zerolog.Logger { return zerolog.Ctx(ctx) }
