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

package testing

import (
	"encoding/hex"
	"strings"
)

// IdentityLine is the VersionCheck reply of the reference firmware
const IdentityLine = "rfid-util-1\r\n"

// BuildLine creates a device line for tag with the CR LF terminator the
// firmware's println produces
func BuildLine(tag byte, text string) []byte {
	return []byte(string(tag) + text + "\r\n")
}

// BuildUIDResponse creates the lines of a successful ReadUid
func BuildUIDResponse(uid []byte, cardType string) [][]byte {
	return [][]byte{
		BuildLine('1', "OK"),
		BuildLine('1', "UID: "+SpacedHex(uid)),
		BuildLine('1', "Type: "+cardType),
		BuildLine('1', "Done"),
	}
}

// BuildSectorResponse creates the lines of a successful ReadData
func BuildSectorResponse(block []byte) [][]byte {
	return [][]byte{
		BuildLine('3', "OK"),
		BuildLine('3', " B: "+strings.ToUpper(hex.EncodeToString(block))),
		BuildLine('3', "Done"),
	}
}

// BuildDumpResponse creates the lines of a ReadDataAll over blocks
func BuildDumpResponse(blocks ...[]byte) [][]byte {
	lines := [][]byte{BuildLine('4', "OK")}
	for _, block := range blocks {
		lines = append(lines, BuildLine('4', " B: "+strings.ToUpper(hex.EncodeToString(block))))
	}
	return append(lines, BuildLine('4', "Done"))
}

// BuildStatusResponse creates the OK then Done lines of a write
func BuildStatusResponse(tag byte) [][]byte {
	return [][]byte{BuildLine(tag, "OK"), BuildLine(tag, "Done")}
}

// BuildFailResponse creates a device reported failure
func BuildFailResponse(tag byte) [][]byte {
	return [][]byte{BuildLine(tag, "Fail")}
}

// SpacedHex formats bytes the way the firmware prints them, e.g. "04 A1 B2"
func SpacedHex(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = strings.ToUpper(hex.EncodeToString([]byte{b}))
	}
	return strings.Join(parts, " ")
}

// Common UIDs for testing
var (
	// TestUID is a sample 4 byte MIFARE Classic UID
	TestUID = []byte{0x04, 0xA1, 0xB2, 0xC3}

	// TestUID7 is a sample 7 byte UID
	TestUID7 = []byte{0x04, 0xAB, 0xCD, 0xEF, 0x12, 0x34, 0x56}
)

// HelloBlock is a 16 byte block holding "Hello" and NUL padding
var HelloBlock = []byte{'H', 'e', 'l', 'l', 'o', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}

// Command tags for reference
const (
	TagReadUID      = '1'
	TagWriteUID     = '2'
	TagReadData     = '3'
	TagReadDataAll  = '4'
	TagWriteData    = '5'
	TagVersionCheck = '9'
)
