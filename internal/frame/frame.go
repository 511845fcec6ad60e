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

// Package frame implements the rfid-util wire framing: host frames are a tag
// byte, an optional payload and a CR LF trailer; device frames are text lines
// terminated by LF.
package frame

import (
	"bytes"
	"strings"
)

// Encode builds a host frame from a tag byte and payload.
func Encode(tag byte, payload []byte) []byte {
	out := make([]byte, 0, TagLength+len(payload)+TrailerLength)
	out = append(out, tag)
	out = append(out, payload...)
	return append(out, Trailer...)
}

// Decode splits a host frame back into its tag and payload. It reports false
// when the frame is too short or lacks the CR LF trailer.
func Decode(data []byte) (tag byte, payload []byte, ok bool) {
	if len(data) < TagLength+TrailerLength || !bytes.HasSuffix(data, Trailer) {
		return 0, nil, false
	}
	return data[0], data[TagLength : len(data)-TrailerLength], true
}

// Buffer accumulates device bytes until complete lines are available. The zero
// value is ready to use. A Buffer is not safe for concurrent use.
type Buffer struct {
	pending []byte
}

// Feed appends data and returns every line completed by it. Returned lines
// keep their terminator; use TrimLine before interpreting them. Bytes after
// the last LF stay buffered for the next call.
func (b *Buffer) Feed(data []byte) []string {
	b.pending = append(b.pending, data...)

	var lines []string
	for {
		idx := bytes.IndexByte(b.pending, LF)
		if idx < 0 {
			break
		}
		lines = append(lines, string(b.pending[:idx+1]))
		b.pending = b.pending[idx+1:]
	}

	if len(b.pending) == 0 {
		b.pending = nil
	}
	return lines
}

// Pending returns a copy of the bytes not yet terminated by LF.
func (b *Buffer) Pending() []byte {
	if len(b.pending) == 0 {
		return nil
	}
	return append([]byte(nil), b.pending...)
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return len(b.pending)
}

// Reset drops any partial line.
func (b *Buffer) Reset() {
	b.pending = nil
}

// TrimLine strips the CR/LF terminator from a device line.
func TrimLine(line string) string {
	return strings.TrimRight(line, "\r\n")
}
