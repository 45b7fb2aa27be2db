// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Thermoquad/ulescope/pkg/dueb"
)

// commandLogger returns the logger handed to the provisioning client.
// By default it is silent; --debug turns on a development-style stderr
// logger that shows every frame sent to and received from the board.
func commandLogger() *zap.Logger {
	if !debugMode {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// withClient opens the configured connection, wraps it in a provisioning
// client and runs fn under a deadline. The client owns the connection and
// closes it when fn returns.
func withClient(timeout time.Duration, fn func(ctx context.Context, client *dueb.Client, connInfo string) error) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}

	client := dueb.NewClient(conn, commandLogger())
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return fn(ctx, client, connInfo)
}
