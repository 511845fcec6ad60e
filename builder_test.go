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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	helloBlock := []byte("Hello\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")

	tests := []struct {
		params     Params
		name       string
		expected   Command
		intent     Intent
		addressing WriteAddressing
	}{
		{
			name:     "read uid",
			intent:   IntentReadUID,
			expected: Command{Kind: CmdReadUID},
		},
		{
			name:     "write uid",
			intent:   IntentWriteUID,
			params:   Params{UID: "04A1B2C3"},
			expected: Command{Kind: CmdWriteUID, Payload: []byte{0x04, 0xA1, 0xB2, 0xC3}},
		},
		{
			name:     "write uid spaced lowercase",
			intent:   IntentWriteUID,
			params:   Params{UID: "04 a1 b2 c3 d4 e5 f6"},
			expected: Command{Kind: CmdWriteUID, Payload: []byte{0x04, 0xA1, 0xB2, 0xC3, 0xD4, 0xE5, 0xF6}},
		},
		{
			name:     "read sector",
			intent:   IntentReadSector,
			params:   Params{Sector: 16},
			expected: Command{Kind: CmdReadData, Payload: []byte{16}},
		},
		{
			name:     "read all sectors",
			intent:   IntentReadAllSectors,
			expected: Command{Kind: CmdReadDataAll},
		},
		{
			name:     "write sector block addressed",
			intent:   IntentWriteSector,
			params:   Params{Sector: 1, Data: "Hello"},
			expected: Command{Kind: CmdWriteData, Payload: append([]byte{4}, helloBlock...)},
		},
		{
			name:     "write sector block address is four times sector",
			intent:   IntentWriteSector,
			params:   Params{Sector: 15, Data: "Hello"},
			expected: Command{Kind: CmdWriteData, Payload: append([]byte{60}, helloBlock...)},
		},
		{
			name:       "write sector row addressed",
			intent:     IntentWriteSector,
			addressing: AddressRow,
			params:     Params{Sector: 3, Data: "48 65 6C 6C 6F"},
			expected:   Command{Kind: CmdWriteData, Payload: append([]byte{3}, helloBlock...)},
		},
		{
			name:     "write empty text pads to block",
			intent:   IntentWriteSector,
			params:   Params{Sector: 2},
			expected: Command{Kind: CmdWriteData, Payload: append([]byte{8}, make([]byte, BlockSize)...)},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := NewBuilder(RevisionSectorDump, tt.addressing)
			cmd, err := b.Build(tt.intent, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cmd)

			_, err = cmd.Encode(b.Revision())
			require.NoError(t, err, "built commands always encode")
		})
	}
}

func TestBuilder_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		params     Params
		name       string
		field      string
		intent     Intent
		addressing WriteAddressing
	}{
		{name: "odd uid", intent: IntentWriteUID, params: Params{UID: "ABC"}, field: "uid"},
		{name: "empty uid", intent: IntentWriteUID, params: Params{UID: "  "}, field: "uid"},
		{name: "non hex uid", intent: IntentWriteUID, params: Params{UID: "04ZZ"}, field: "uid"},
		{name: "uid too long", intent: IntentWriteUID, params: Params{UID: "0102030405060708090A0B"}, field: "uid"},
		{name: "sector zero", intent: IntentReadSector, params: Params{Sector: 0}, field: "sector"},
		{name: "sector seventeen", intent: IntentReadSector, params: Params{Sector: 17}, field: "sector"},
		{name: "write sector out of range", intent: IntentWriteSector, params: Params{Sector: -1}, field: "sector"},
		{
			name:   "text longer than block",
			intent: IntentWriteSector,
			params: Params{Sector: 1, Data: "0123456789abcdefg"},
			field:  "data length",
		},
		{
			name:   "invalid utf8 text",
			intent: IntentWriteSector,
			params: Params{Sector: 1, Data: "\xff\xfe"},
			field:  "data",
		},
		{
			name:       "odd hex row data",
			intent:     IntentWriteSector,
			addressing: AddressRow,
			params:     Params{Sector: 1, Data: "486"},
			field:      "data",
		},
		{
			name:       "row data longer than block",
			intent:     IntentWriteSector,
			addressing: AddressRow,
			params:     Params{Sector: 1, Data: "00112233445566778899AABBCCDDEEFF00"},
			field:      "data length",
		},
		{name: "unknown intent", intent: Intent(42), field: "intent"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewBuilder(RevisionSectorDump, tt.addressing).Build(tt.intent, tt.params)
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestBuilder_TextOfExactlyOneBlock(t *testing.T) {
	t.Parallel()

	cmd, err := NewBuilder(RevisionSectorDump, AddressBlock).Build(IntentWriteSector, Params{
		Sector: 4,
		Data:   "0123456789abcdef",
	})
	require.NoError(t, err)
	assert.Equal(t, append([]byte{16}, []byte("0123456789abcdef")...), cmd.Payload)
}

func TestBuilder_UnsupportedByRevision(t *testing.T) {
	t.Parallel()

	b := NewBuilder(RevisionLegacy, AddressRow)
	_, err := b.Build(IntentReadAllSectors, Params{})
	require.ErrorIs(t, err, ErrUnsupportedCommand)

	cmd, err := b.Build(IntentWriteSector, Params{Sector: 2, Data: "41"})
	require.NoError(t, err)
	data, err := cmd.Encode(RevisionLegacy)
	require.NoError(t, err)
	assert.Equal(t, byte('4'), data[0])
	assert.Equal(t, byte(2), data[1])
	assert.Equal(t, byte('A'), data[2])
}

func TestParseAddressing(t *testing.T) {
	t.Parallel()

	a, err := ParseAddressing("row")
	require.NoError(t, err)
	assert.Equal(t, AddressRow, a)

	a, err = ParseAddressing("")
	require.NoError(t, err)
	assert.Equal(t, AddressBlock, a)

	_, err = ParseAddressing("sector")
	require.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, "block", AddressBlock.String())
	assert.Equal(t, "write-sector", IntentWriteSector.String())
}
