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

/*
Package rfidutil is a host side client for the rfid-util serial RFID reader,
an Arduino style board driving a MIFARE Classic 1K capable front end over a
USB serial adapter.

The package holds the protocol pieces: the command model and Builder, the
discovery state machine (Prober) and the response Dispatcher. The session
package ties them together behind a single event loop, transport/uart opens
real serial ports and detection lists them.

Basic Usage:

	import (
	    rfidutil "github.com/lxxxxl/rfid-util"
	    "github.com/lxxxxl/rfid-util/session"
	)

	c, err := session.New(session.WithCallbacks(rfidutil.Callbacks{
	    OnStatus: func(text string) { fmt.Println(text) },
	    OnUID:    func(uid string) { fmt.Println("UID:", uid) },
	}))
	if err != nil {
	    log.Fatal(err)
	}
	go func() { _ = c.Run(ctx) }()

	if err := c.WaitConnected(ctx); err != nil {
	    log.Fatal(err)
	}
	if err := c.ReadUID(ctx); err != nil {
	    log.Fatal(err)
	}

Wire Protocol:

Host frames are a one byte command tag, an optional binary payload and CR LF:

	'1'  ReadUID
	'2'  WriteUID      UID bytes (1-10)
	'3'  ReadData      sector (1-16)
	'4'  ReadDataAll   (RevisionSectorDump) or WriteData (RevisionLegacy)
	'5'  WriteData     address, 16 byte block (RevisionSectorDump)
	'9'  VersionCheck  answered with a line containing "rfid-util"

The reader answers with newline terminated text lines that start with the
tag of the command they belong to, e.g. "1UID: 04 A1 B2 C3" or "3Done".

Discovery:

Every serial port is opened at 9600 8N1 and sent a VersionCheck. A port
that answers with the identity marker within the handshake timeout (100ms by
default) becomes the session; any other outcome closes it and moves on.

Error Handling:

Validation failures are reported before anything is written and can be
inspected with errors.As or errors.Is:

	var verr *rfidutil.ValidationError
	if errors.As(err, &verr) {
	    fmt.Println("bad", verr.Field)
	}
	if errors.Is(err, rfidutil.ErrNotConnected) {
	    // wait for discovery
	}

Logging:

The library logs through zerolog and is silent by default. Install a
logger with SetLogger.

Thread Safety:

Builder is safe for concurrent use. Prober and Dispatcher are not; the
session Controller serializes all access to them on its loop goroutine.
*/
package rfidutil
