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
	"errors"
	"fmt"
	"strings"
	"time"

	rfidutil "github.com/lxxxxl/rfid-util"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "RFIDUTIL"

type config struct {
	revision         rfidutil.Revision
	addressing       rfidutil.WriteAddressing
	logLevel         string
	logFile          string
	ignore           []string
	handshakeTimeout time.Duration
	timeout          time.Duration
	rescan           time.Duration
	usbOnly          bool
	debug            bool
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("rfidutil", pflag.ContinueOnError)

	fs.Duration("handshake-timeout", rfidutil.DefaultHandshakeTimeout, "Wait per port for the VersionCheck reply")
	fs.DurationP("timeout", "t", 30*time.Second, "Give up when the operation has not finished in time")
	fs.Duration("rescan", 0, "Rescan ports this often while no reader is found (0 disables)")
	fs.String("revision", rfidutil.RevisionSectorDump.String(), "Firmware protocol revision: sector-dump or legacy")
	fs.String("addressing", rfidutil.AddressBlock.String(), "Sector write addressing: block (text) or row (hex)")
	fs.StringSlice("ignore", nil, "Serial ports that must not be probed")
	fs.Bool("usb-only", false, "Only probe ports backed by a USB device")
	fs.String("log-level", "warn", "Log level: debug, info, warn, error")
	fs.BoolP("debug", "d", false, "Log protocol traffic, overrides log-level")
	fs.String("log-file", "", "Write logs to this file with rotation instead of stderr")
	fs.StringP("config", "c", "", "YAML configuration file")
	fs.BoolP("help", "h", false, "Show this help")

	return fs
}

// loadConfig merges flags, RFIDUTIL_* environment variables, the optional
// config file and defaults, in that order of precedence.
func loadConfig(fs *pflag.FlagSet, args []string) (*config, []string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, nil, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	revision, err := rfidutil.ParseRevision(v.GetString("revision"))
	if err != nil {
		return nil, nil, err
	}
	addressing, err := rfidutil.ParseAddressing(v.GetString("addressing"))
	if err != nil {
		return nil, nil, err
	}

	cfg := &config{
		handshakeTimeout: v.GetDuration("handshake-timeout"),
		timeout:          v.GetDuration("timeout"),
		rescan:           v.GetDuration("rescan"),
		revision:         revision,
		addressing:       addressing,
		ignore:           v.GetStringSlice("ignore"),
		usbOnly:          v.GetBool("usb-only"),
		debug:            v.GetBool("debug"),
		logLevel:         v.GetString("log-level"),
		logFile:          v.GetString("log-file"),
	}
	if cfg.handshakeTimeout <= 0 {
		return nil, nil, errors.New("handshake-timeout must be positive")
	}
	if cfg.timeout <= 0 {
		return nil, nil, errors.New("timeout must be positive")
	}
	return cfg, fs.Args(), nil
}
