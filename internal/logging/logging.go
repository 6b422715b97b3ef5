// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package logging builds the structured logger used by the server.
//
// Standard output carries the MCP protocol, so logs are always written to standard error (or any
// other writer handed to NewLogger).
package logging

import (
	"io"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a console logger writing to w at info level, or debug level when debug is set.
func NewLogger(w io.Writer, debug bool) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), level)

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if debug {
		opts = append(opts, zap.AddCaller())
	}

	return zap.New(core, opts...)
}

// NewStdLog adapts logger for libraries that only accept a *log.Logger. Lines are logged at error level.
func NewStdLog(logger *zap.Logger) *log.Logger {
	stdLog, err := zap.NewStdLogAt(logger, zapcore.ErrorLevel)
	if err != nil {
		return zap.NewStdLog(logger)
	}

	return stdLog
}

// Secret returns a field that records whether a secret is set without recording its value.
func Secret(key string, value string) zap.Field {
	if value == "" {
		return zap.String(key, "")
	}

	return zap.String(key, "<redacted>")
}
