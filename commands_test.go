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

func TestCommand_Encode(t *testing.T) {
	t.Parallel()

	writeData := append([]byte{8}, []byte("Hello\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")...)

	tests := []struct {
		name     string
		cmd      Command
		expected []byte
		rev      Revision
	}{
		{
			name:     "read uid",
			cmd:      Command{Kind: CmdReadUID},
			expected: []byte{'1', 0x0D, 0x0A},
		},
		{
			name:     "write uid",
			cmd:      Command{Kind: CmdWriteUID, Payload: []byte{0x04, 0xA1, 0xB2, 0xC3}},
			expected: []byte{0x32, 0x04, 0xA1, 0xB2, 0xC3, 0x0D, 0x0A},
		},
		{
			name:     "read data",
			cmd:      Command{Kind: CmdReadData, Payload: []byte{1}},
			expected: []byte{'3', 0x01, 0x0D, 0x0A},
		},
		{
			name:     "read data all",
			cmd:      Command{Kind: CmdReadDataAll},
			expected: []byte{'4', 0x0D, 0x0A},
		},
		{
			name:     "write data sector dump revision",
			cmd:      Command{Kind: CmdWriteData, Payload: writeData},
			expected: append(append([]byte{'5'}, writeData...), 0x0D, 0x0A),
		},
		{
			name:     "write data legacy revision",
			cmd:      Command{Kind: CmdWriteData, Payload: writeData},
			rev:      RevisionLegacy,
			expected: append(append([]byte{'4'}, writeData...), 0x0D, 0x0A),
		},
		{
			name:     "version check",
			cmd:      Command{Kind: CmdVersionCheck},
			expected: []byte{'9', 0x0D, 0x0A},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := tt.cmd.Encode(tt.rev)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, data)
		})
	}
}

func TestCommand_EncodeRejectsBadShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  Command
		rev  Revision
	}{
		{name: "read uid with payload", cmd: Command{Kind: CmdReadUID, Payload: []byte{1}}},
		{name: "empty uid", cmd: Command{Kind: CmdWriteUID}},
		{name: "uid too long", cmd: Command{Kind: CmdWriteUID, Payload: make([]byte, MaxUIDLength+1)}},
		{name: "sector zero", cmd: Command{Kind: CmdReadData, Payload: []byte{0}}},
		{name: "sector seventeen", cmd: Command{Kind: CmdReadData, Payload: []byte{17}}},
		{name: "two sector bytes", cmd: Command{Kind: CmdReadData, Payload: []byte{1, 2}}},
		{name: "short write", cmd: Command{Kind: CmdWriteData, Payload: []byte{4, 'H', 'i'}}},
		{name: "dump in legacy", cmd: Command{Kind: CmdReadDataAll}, rev: RevisionLegacy},
		{name: "unknown kind", cmd: Command{Kind: CommandKind(99)}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := tt.cmd.Encode(tt.rev)
			require.Error(t, err)
			assert.Nil(t, data)

			var encErr *EncodingError
			require.ErrorAs(t, err, &encErr)
			require.ErrorIs(t, err, ErrEncoding)
		})
	}
}

func TestRevision_Tags(t *testing.T) {
	t.Parallel()

	tag, ok := RevisionSectorDump.Tag(CmdReadDataAll)
	require.True(t, ok)
	assert.Equal(t, byte('4'), tag)

	tag, ok = RevisionSectorDump.Tag(CmdWriteData)
	require.True(t, ok)
	assert.Equal(t, byte('5'), tag)

	_, ok = RevisionLegacy.Tag(CmdReadDataAll)
	assert.False(t, ok)

	tag, ok = RevisionLegacy.Tag(CmdWriteData)
	require.True(t, ok)
	assert.Equal(t, byte('4'), tag)

	kind, ok := RevisionSectorDump.KindForTag('4')
	require.True(t, ok)
	assert.Equal(t, CmdReadDataAll, kind)

	kind, ok = RevisionLegacy.KindForTag('4')
	require.True(t, ok)
	assert.Equal(t, CmdWriteData, kind)

	_, ok = RevisionLegacy.KindForTag('5')
	assert.False(t, ok)

	for _, b := range []byte{'0', '6', 'r', 0x0D} {
		_, ok := RevisionSectorDump.KindForTag(b)
		assert.False(t, ok, "tag %q", b)
	}
}

func TestParseRevision(t *testing.T) {
	t.Parallel()

	rev, err := ParseRevision("legacy")
	require.NoError(t, err)
	assert.Equal(t, RevisionLegacy, rev)

	rev, err = ParseRevision("")
	require.NoError(t, err)
	assert.Equal(t, RevisionSectorDump, rev)

	_, err = ParseRevision("v3")
	require.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, "sector-dump", RevisionSectorDump.String())
	assert.Equal(t, "Revision(7)", Revision(7).String())
}

func TestCommandKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ReadUID", CmdReadUID.String())
	assert.Equal(t, "VersionCheck", CmdVersionCheck.String())
	assert.Equal(t, "CommandKind(42)", CommandKind(42).String())
	assert.True(t, CmdReadData.IsRead())
	assert.True(t, CmdReadDataAll.IsRead())
	assert.False(t, CmdWriteData.IsRead())
}
