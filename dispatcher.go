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

package rfidutil

import (
	"bytes"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/lxxxxl/rfid-util/internal/frame"
)

// Response markers written by the reader firmware
const (
	markerOK       = "OK"
	markerDone     = "Done"
	markerFail     = "Fail"
	markerUID      = "UID:"
	markerType     = "Type:"
	markerSector   = "3 B"
	markerDumpRow  = "4 B"
	valueSeparator = ": "
)

// SectorRow is one line of a ReadDataAll dump
type SectorRow struct {
	Hex   string
	Index int
}

// Dispatcher interprets completed device lines for a confirmed session.
// It is not safe for concurrent use.
type Dispatcher struct {
	callbacks *Callbacks
	hexAcc    strings.Builder
	record    []SectorRow
	revision  Revision
	finalized bool
}

// NewDispatcher creates a dispatcher for revision reporting to callbacks
func NewDispatcher(revision Revision, callbacks *Callbacks) *Dispatcher {
	return &Dispatcher{
		revision:  revision,
		callbacks: callbacks,
	}
}

// Begin resets the read accumulators when kind is about to be sent
func (d *Dispatcher) Begin(kind CommandKind) {
	switch kind {
	case CmdReadData:
		d.hexAcc.Reset()
	case CmdReadDataAll:
		d.record = nil
		d.finalized = false
	case CmdReadUID, CmdWriteUID, CmdWriteData, CmdVersionCheck:
	}
}

// SectorRecord returns a copy of the rows of the current or last dump and
// whether the dump has been terminated by Done or Fail.
func (d *Dispatcher) SectorRecord() ([]SectorRow, bool) {
	return append([]SectorRow(nil), d.record...), d.finalized
}

// Accumulated returns the hex collected by the current ReadData
func (d *Dispatcher) Accumulated() string {
	return d.hexAcc.String()
}

// Dispatch interprets one completed line. Lines whose first byte is not a
// command tag of the revision are dropped.
func (d *Dispatcher) Dispatch(line string) {
	if line == "" {
		return
	}
	kind, ok := d.revision.KindForTag(line[0])
	if !ok {
		debugf("dropping untagged line %q", frame.TrimLine(line))
		return
	}

	done, failed := d.interpretCommon(line)

	switch kind {
	case CmdReadUID:
		d.interpretReadUID(line)
	case CmdReadData:
		d.interpretReadData(line, done)
	case CmdReadDataAll:
		d.interpretReadDataAll(line, done || failed)
	case CmdWriteUID, CmdWriteData, CmdVersionCheck:
		// status markers only
	default:
		debugf("no interpreter for %s", kind)
	}
}

// interpretCommon handles the status markers every command may report
func (d *Dispatcher) interpretCommon(line string) (done, failed bool) {
	if strings.Contains(line, markerOK) {
		d.callbacks.status(StatusWaitingForCard)
	}
	if strings.Contains(line, markerDone) {
		done = true
		d.callbacks.status(StatusDone)
	}
	if strings.Contains(line, markerFail) {
		failed = true
		d.callbacks.status(StatusFailed)
	}
	return done, failed
}

func (d *Dispatcher) interpretReadUID(line string) {
	if idx := strings.Index(line, markerUID); idx >= 0 {
		d.callbacks.uid(strings.TrimSpace(frame.TrimLine(line[idx+len(markerUID):])))
	}
	if idx := strings.Index(line, markerType); idx >= 0 {
		d.callbacks.status(strings.TrimSpace(frame.TrimLine(line[idx+len(markerType):])))
	}
}

func (d *Dispatcher) interpretReadData(line string, done bool) {
	if strings.Contains(line, markerSector) {
		if value, ok := valueAfterSeparator(line); ok {
			d.hexAcc.WriteString(value)
		}
	}
	if done {
		text, err := DecodeTextPayload(d.hexAcc.String())
		d.callbacks.textPayload(text, err)
	}
}

func (d *Dispatcher) interpretReadDataAll(line string, terminal bool) {
	if strings.Contains(line, markerDumpRow) {
		if value, ok := valueAfterSeparator(line); ok {
			row := SectorRow{Index: len(d.record), Hex: value}
			d.record = append(d.record, row)
			d.callbacks.sectorRow(row.Index, row.Hex)
		}
	}
	if terminal {
		d.finalized = true
	}
}

func valueAfterSeparator(line string) (string, bool) {
	idx := strings.Index(line, valueSeparator)
	if idx < 0 {
		return "", false
	}
	return frame.TrimLine(line[idx+len(valueSeparator):]), true
}

// DecodeTextPayload decodes accumulated sector hex as text. Whitespace in the
// hex is ignored. The bytes must be valid UTF-8 as read, NUL padding is
// trimmed only after that check, and a sector holding nothing but padding is
// reported as a decode failure.
func DecodeTextPayload(hexText string) (string, error) {
	compact := strings.Join(strings.Fields(hexText), "")
	data, err := hex.DecodeString(compact)
	if err != nil {
		return "", &PayloadDecodeError{Hex: hexText, Err: err}
	}
	if !utf8.Valid(data) {
		return "", &PayloadDecodeError{Hex: hexText}
	}
	text := bytes.TrimRight(data, "\x00")
	if len(text) == 0 {
		return "", &PayloadDecodeError{Hex: hexText}
	}
	return string(text), nil
}
