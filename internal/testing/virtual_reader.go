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
	"sort"
	"sync"

	"github.com/lxxxxl/rfid-util/internal/frame"
)

// VirtualReader simulates the rfid-util reader firmware for tests. Respond
// takes a host frame and returns the lines the firmware would print.
type VirtualReader struct {
	sectors  map[int][]byte
	Identity string
	CardType string
	UID      []byte
	mu       sync.Mutex
	Present  bool // Whether a card is on the reader
	Legacy   bool // '4' is WriteData instead of ReadDataAll
	Silent   bool // Ignore every frame, like a non-responding device
}

// NewVirtualReader creates a reader with a MIFARE 1K card holding
// "Hello" in sector 1
func NewVirtualReader() *VirtualReader {
	v := &VirtualReader{
		Identity: IdentityLine,
		CardType: "MIFARE 1KB",
		UID:      append([]byte(nil), TestUID...),
		Present:  true,
		sectors:  make(map[int][]byte),
	}
	v.sectors[1] = append([]byte(nil), HelloBlock...)
	return v
}

// Sector returns a copy of the stored sector block, zeros if never written
func (v *VirtualReader) Sector(sector int) []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sectorLocked(sector)
}

// SetSector stores a block for sector
func (v *VirtualReader) SetSector(sector int, block []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sectors[sector] = append([]byte(nil), block...)
}

func (v *VirtualReader) sectorLocked(sector int) []byte {
	if data, ok := v.sectors[sector]; ok {
		return append([]byte(nil), data...)
	}
	return make([]byte, 16)
}

// Respond returns the lines for a host frame. Frames without the CR LF
// trailer are ignored like the firmware ignores stray bytes.
func (v *VirtualReader) Respond(data []byte) [][]byte {
	v.mu.Lock()
	defer v.mu.Unlock()

	tag, payload, ok := frame.Decode(data)
	if v.Silent || !ok {
		return nil
	}

	switch {
	case tag == TagVersionCheck:
		return [][]byte{[]byte(v.Identity)}
	case !v.Present:
		return [][]byte{BuildLine(tag, "OK")}
	case tag == TagReadUID:
		return BuildUIDResponse(v.UID, v.CardType)
	case tag == TagWriteUID:
		v.UID = append([]byte(nil), payload...)
		return BuildStatusResponse(tag)
	case tag == TagReadData:
		if len(payload) != 1 || payload[0] < 1 || payload[0] > 16 {
			return BuildFailResponse(tag)
		}
		return BuildSectorResponse(v.sectorLocked(int(payload[0])))
	case tag == '4' && !v.Legacy:
		return v.dumpLocked()
	case tag == '4' || tag == TagWriteData:
		return v.writeLocked(tag, payload)
	default:
		return nil
	}
}

func (v *VirtualReader) dumpLocked() [][]byte {
	indexes := make([]int, 0, len(v.sectors))
	for sector := range v.sectors {
		indexes = append(indexes, sector)
	}
	sort.Ints(indexes)

	blocks := make([][]byte, 0, len(indexes))
	for _, sector := range indexes {
		blocks = append(blocks, v.sectors[sector])
	}
	return BuildDumpResponse(blocks...)
}

// writeLocked stores a WriteData payload. Legacy firmware addresses by
// sector, current firmware by block address (sector*4).
func (v *VirtualReader) writeLocked(tag byte, payload []byte) [][]byte {
	if len(payload) != 17 {
		return BuildFailResponse(tag)
	}
	sector := int(payload[0])
	if !v.Legacy {
		sector /= 4
	}
	if sector < 1 || sector > 16 {
		return BuildFailResponse(tag)
	}
	v.sectors[sector] = append([]byte(nil), payload[1:]...)
	return BuildStatusResponse(tag)
}
