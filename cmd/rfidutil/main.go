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

// Command rfidutil talks to the rfid-util reader over a USB serial port.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	rfidutil "github.com/lxxxxl/rfid-util"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "rfidutil: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr *os.File) error {
	fs := newFlagSet()
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(fs, stderr) }

	cfg, rest, err := loadConfig(fs, args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if help, _ := fs.GetBool("help"); help || len(rest) == 0 {
		printUsage(fs, stderr)
		return nil
	}

	logger, closer, err := newLogger(cfg.logLevel, cfg.logFile, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	rfidutil.SetLogger(logger)
	if cfg.debug {
		rfidutil.SetDebugEnabled(true)
	}

	a := &app{cfg: cfg, out: stdout, errOut: stderr}
	return a.execute(ctx, rest[0], rest[1:])
}

func printUsage(fs *pflag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprint(w, `rfidutil - read and write cards with the rfid-util reader

Usage:
  rfidutil [options] ports                     List serial ports
  rfidutil [options] read-uid                  Print the UID of the next card
  rfidutil [options] write-uid <hex>           Write a UID, e.g. 04A1B2C3
  rfidutil [options] read-sector <1-16>        Print one sector as text
  rfidutil [options] dump                      Print every sector as hex
  rfidutil [options] write-sector <1-16> <data>
                                               Write text (block) or hex (row)
  rfidutil [options] watch                     Stay connected and print events

Options:
`)
	_, _ = fmt.Fprint(w, fs.FlagUsages())
	_, _ = fmt.Fprintf(w, "\nEvery option can also be set as %s_<NAME>, e.g. %s_REVISION=legacy.\n",
		envPrefix, envPrefix)
}
