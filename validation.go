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
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

// parseUID decodes a user supplied UID such as "04A1B2C3" or "04 A1 B2 C3"
func parseUID(s string) ([]byte, error) {
	compact := strings.Join(strings.Fields(s), "")
	if compact == "" {
		return nil, newValidationError("uid", s, "empty")
	}
	if len(compact)%2 != 0 {
		return nil, newValidationError("uid", s, "odd number of hex digits")
	}
	uid, err := hex.DecodeString(compact)
	if err != nil {
		return nil, newValidationError("uid", s, "not hexadecimal")
	}
	if len(uid) > MaxUIDLength {
		return nil, newValidationError("uid", s, fmt.Sprintf("longer than %d bytes", MaxUIDLength))
	}
	return uid, nil
}

func validateSector(sector int) error {
	if sector < MinSector || sector > MaxSector {
		return newValidationError("sector", sector, fmt.Sprintf("must be in %d-%d", MinSector, MaxSector))
	}
	return nil
}

// padBlock copies data into a NUL padded block
func padBlock(field string, data []byte) ([]byte, error) {
	if len(data) > BlockSize {
		return nil, newValidationError(field, len(data), fmt.Sprintf("exceeds %d byte block", BlockSize))
	}
	block := make([]byte, BlockSize)
	copy(block, data)
	return block, nil
}

// textBlock validates text for block addressed writes
func textBlock(text string) ([]byte, error) {
	if !utf8.ValidString(text) {
		return nil, newValidationError("data", text, "not valid UTF-8")
	}
	return padBlock("data length", []byte(text))
}

// hexBlock validates a hex payload for row addressed writes
func hexBlock(s string) ([]byte, error) {
	compact := strings.Join(strings.Fields(s), "")
	if len(compact)%2 != 0 {
		return nil, newValidationError("data", s, "odd number of hex digits")
	}
	data, err := hex.DecodeString(compact)
	if err != nil {
		return nil, newValidationError("data", s, "not hexadecimal")
	}
	return padBlock("data length", data)
}
