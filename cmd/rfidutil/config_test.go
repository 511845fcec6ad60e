// rfid-util
// Copyright (c) 2025 The rfid-util Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of rfid-util.
//
// rfid-util is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// rfid-util is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with rfid-util; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	rfidutil "github.com/lxxxxl/rfid-util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, rest, err := loadConfig(newFlagSet(), []string{"read-uid"})
	require.NoError(t, err)

	assert.Equal(t, []string{"read-uid"}, rest)
	assert.Equal(t, rfidutil.DefaultHandshakeTimeout, cfg.handshakeTimeout)
	assert.Equal(t, 30*time.Second, cfg.timeout)
	assert.Equal(t, rfidutil.RevisionSectorDump, cfg.revision)
	assert.Equal(t, rfidutil.AddressBlock, cfg.addressing)
	assert.Equal(t, "warn", cfg.logLevel)
	assert.Empty(t, cfg.ignore)
	assert.Zero(t, cfg.rescan)
	assert.False(t, cfg.debug)
}

func TestLoadConfig_Flags(t *testing.T) {
	t.Parallel()

	cfg, rest, err := loadConfig(newFlagSet(), []string{
		"write-sector", "--revision", "legacy", "--addressing=row",
		"--ignore", "/dev/ttyS0,/dev/ttyS1", "--handshake-timeout", "250ms",
		"-t", "5s", "-d", "3", "4869",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"write-sector", "3", "4869"}, rest)
	assert.Equal(t, rfidutil.RevisionLegacy, cfg.revision)
	assert.Equal(t, rfidutil.AddressRow, cfg.addressing)
	assert.Equal(t, []string{"/dev/ttyS0", "/dev/ttyS1"}, cfg.ignore)
	assert.Equal(t, 250*time.Millisecond, cfg.handshakeTimeout)
	assert.Equal(t, 5*time.Second, cfg.timeout)
	assert.True(t, cfg.debug)
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rfidutil.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"revision: legacy\nhandshake-timeout: 300ms\nusb-only: true\nlog-level: debug\n",
	), 0o600))

	cfg, _, err := loadConfig(newFlagSet(), []string{"--config", path, "--log-level", "error", "dump"})
	require.NoError(t, err)

	assert.Equal(t, rfidutil.RevisionLegacy, cfg.revision)
	assert.Equal(t, 300*time.Millisecond, cfg.handshakeTimeout)
	assert.True(t, cfg.usbOnly)
	assert.Equal(t, "error", cfg.logLevel, "flags win over the config file")
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("RFIDUTIL_REVISION", "legacy")
	t.Setenv("RFIDUTIL_HANDSHAKE_TIMEOUT", "1s")

	cfg, _, err := loadConfig(newFlagSet(), []string{"read-uid"})
	require.NoError(t, err)
	assert.Equal(t, rfidutil.RevisionLegacy, cfg.revision)
	assert.Equal(t, time.Second, cfg.handshakeTimeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown revision", args: []string{"--revision", "v9"}},
		{name: "unknown addressing", args: []string{"--addressing", "sector"}},
		{name: "zero handshake", args: []string{"--handshake-timeout", "0s"}},
		{name: "zero timeout", args: []string{"--timeout", "0s"}},
		{name: "unknown flag", args: []string{"--baud", "115200"}},
		{name: "missing config file", args: []string{"--config", "/nonexistent/rfidutil.yaml"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fs := newFlagSet()
			fs.SetOutput(discard{})
			_, _, err := loadConfig(fs, tt.args)
			require.Error(t, err)
		})
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestNewLogger(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rfidutil.log")
	logger, closer, err := newLogger("info", path, os.Stderr)
	require.NoError(t, err)
	logger.Info().Str("path", "/dev/ttyUSB0").Msg("reader connected")
	logger.Debug().Msg("hidden")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"reader connected"`)
	assert.NotContains(t, string(data), "hidden")

	_, _, err = newLogger("loud", "", os.Stderr)
	require.Error(t, err)
}
