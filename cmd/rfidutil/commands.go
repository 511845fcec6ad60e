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
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	rfidutil "github.com/lxxxxl/rfid-util"
	"github.com/lxxxxl/rfid-util/detection"
	"github.com/lxxxxl/rfid-util/session"
)

const watchRescan = 2 * time.Second

type app struct {
	cfg    *config
	out    io.Writer
	errOut io.Writer
}

func (a *app) execute(ctx context.Context, name string, args []string) error {
	switch name {
	case "ports":
		return a.listPorts()
	case "watch":
		return a.watch(ctx)
	default:
		intent, params, err := parseCommand(name, args)
		if err != nil {
			return err
		}
		return a.runOnce(ctx, intent, params)
	}
}

// parseCommand maps a one-shot subcommand and its arguments to an intent
func parseCommand(name string, args []string) (rfidutil.Intent, rfidutil.Params, error) {
	var params rfidutil.Params

	switch name {
	case "read-uid":
		return rfidutil.IntentReadUID, params, expectArgs(name, args, 0)
	case "dump":
		return rfidutil.IntentReadAllSectors, params, expectArgs(name, args, 0)
	case "write-uid":
		if err := expectArgs(name, args, 1); err != nil {
			return 0, params, err
		}
		params.UID = args[0]
		return rfidutil.IntentWriteUID, params, nil
	case "read-sector":
		if err := expectArgs(name, args, 1); err != nil {
			return 0, params, err
		}
		sector, err := parseSector(args[0])
		if err != nil {
			return 0, params, err
		}
		params.Sector = sector
		return rfidutil.IntentReadSector, params, nil
	case "write-sector":
		if len(args) < 2 {
			return 0, params, fmt.Errorf("%s: expected <sector> <data>", name)
		}
		sector, err := parseSector(args[0])
		if err != nil {
			return 0, params, err
		}
		params.Sector = sector
		params.Data = strings.Join(args[1:], " ")
		return rfidutil.IntentWriteSector, params, nil
	default:
		return 0, params, fmt.Errorf("unknown command %q", name)
	}
}

func expectArgs(name string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func parseSector(s string) (int, error) {
	sector, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("sector %q is not a number", s)
	}
	return sector, nil
}

func (a *app) detectionOptions() *detection.Options {
	opts := detection.DefaultOptions()
	opts.IgnorePaths = a.cfg.ignore
	opts.USBOnly = a.cfg.usbOnly
	return opts
}

func (a *app) sessionOptions(callbacks rfidutil.Callbacks, rescan time.Duration) []session.Option {
	detectOpts := a.detectionOptions()
	return []session.Option{
		session.WithCallbacks(callbacks),
		session.WithEnumerator(func() []string {
			return detection.ListCandidates(detectOpts)
		}),
		session.WithHandshakeTimeout(a.cfg.handshakeTimeout),
		session.WithRescanInterval(rescan),
		session.WithRevision(a.cfg.revision),
		session.WithAddressing(a.cfg.addressing),
	}
}

func (a *app) listPorts() error {
	ports := detection.List(a.detectionOptions())
	if len(ports) == 0 {
		_, _ = fmt.Fprintln(a.errOut, "No serial ports found")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PORT\tVID:PID\tPRODUCT\tSERIAL")
	for _, port := range ports {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			port.Path, orDash(port.VIDPID), orDash(port.Product), orDash(port.SerialNumber))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// printer prints reader output: data on out, status texts on errOut
func (a *app) printer() rfidutil.Callbacks {
	return rfidutil.Callbacks{
		OnStatus: func(text string) {
			_, _ = fmt.Fprintln(a.errOut, text)
		},
		OnUID: func(uid string) {
			_, _ = fmt.Fprintf(a.out, "UID: %s\n", uid)
		},
		OnSectorRow: func(index int, hex string) {
			_, _ = fmt.Fprintf(a.out, "%2d  %s\n", index, hex)
		},
		OnTextPayload: func(text string, err error) {
			if err != nil {
				_, _ = fmt.Fprintf(a.errOut, "Sector is not text: %v\n", err)
				return
			}
			_, _ = fmt.Fprintln(a.out, text)
		},
	}
}

// runOnce connects, issues one command and waits for its terminal status
func (a *app) runOnce(ctx context.Context, intent rfidutil.Intent, params rfidutil.Params) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.timeout)
	defer cancel()

	result := make(chan error, 1)
	finish := func(err error) {
		select {
		case result <- err:
		default:
		}
	}

	callbacks := a.printer()
	printStatus, printText := callbacks.OnStatus, callbacks.OnTextPayload
	callbacks.OnStatus = func(text string) {
		printStatus(text)
		switch text {
		case rfidutil.StatusFailed:
			finish(rfidutil.ErrProtocolFail)
		case rfidutil.StatusDone:
			if intent != rfidutil.IntentReadSector {
				finish(nil)
			}
		}
	}
	callbacks.OnTextPayload = func(text string, err error) {
		printText(text, err)
		finish(err)
	}

	c, err := session.New(a.sessionOptions(callbacks, a.cfg.rescan)...)
	if err != nil {
		return err
	}

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = c.Run(ctx)
	}()
	defer func() {
		cancel()
		<-runDone
	}()

	if err := c.WaitConnected(ctx); err != nil {
		return fmt.Errorf("waiting for reader: %w", err)
	}
	if info, ok := c.Info(); ok {
		rfidutil.Logger().Info().Str("path", info.Path).Str("firmware", info.Firmware).Msg("using reader")
	}

	if err := c.Request(ctx, intent, params); err != nil {
		return fmt.Errorf("%s: %w", intent, err)
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%s: no result within %s: %w", intent, a.cfg.timeout, ctx.Err())
	}
}

// watch keeps a session open and prints every event until ctx is done
func (a *app) watch(ctx context.Context) error {
	rescan := a.cfg.rescan
	if rescan == 0 {
		rescan = watchRescan
	}

	c, err := session.New(a.sessionOptions(a.printer(), rescan)...)
	if err != nil {
		return err
	}

	err = c.Run(ctx)
	metrics := c.Metrics()
	rfidutil.Logger().Info().
		Int64("passes", metrics.Passes).
		Int64("handshakes", metrics.Handshakes).
		Int64("lines", metrics.Lines).
		Int64("reconnects", metrics.Reconnects).
		Msg("watch finished")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
