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

import "fmt"

// Intent is a user request the Builder turns into a Command
type Intent int

const (
	IntentReadUID Intent = iota
	IntentWriteUID
	IntentReadSector
	IntentReadAllSectors
	IntentWriteSector
)

// String returns the intent name
func (i Intent) String() string {
	switch i {
	case IntentReadUID:
		return "read-uid"
	case IntentWriteUID:
		return "write-uid"
	case IntentReadSector:
		return "read-sector"
	case IntentReadAllSectors:
		return "read-all-sectors"
	case IntentWriteSector:
		return "write-sector"
	default:
		return fmt.Sprintf("Intent(%d)", int(i))
	}
}

// Params carries the user input for an Intent. Unused fields are ignored.
type Params struct {
	// UID is the hex encoded UID for IntentWriteUID
	UID string
	// Data is the sector content for IntentWriteSector: text under block
	// addressing, hex under row addressing
	Data string
	// Sector is the 1-based sector index
	Sector int
}

// WriteAddressing selects how WriteData addresses the target sector
type WriteAddressing int

const (
	// AddressBlock sends [sector*4, text padded to 16 bytes]
	AddressBlock WriteAddressing = iota
	// AddressRow sends [sector, hex decoded bytes padded to 16 bytes]
	AddressRow
)

// String returns the addressing name used in configuration
func (a WriteAddressing) String() string {
	switch a {
	case AddressBlock:
		return "block"
	case AddressRow:
		return "row"
	default:
		return fmt.Sprintf("WriteAddressing(%d)", int(a))
	}
}

// ParseAddressing parses an addressing name as returned by String
func ParseAddressing(s string) (WriteAddressing, error) {
	switch s {
	case "block", "":
		return AddressBlock, nil
	case "row":
		return AddressRow, nil
	default:
		return 0, newValidationError("addressing", s, "expected block or row")
	}
}

// Builder validates user intents and produces well formed Commands
type Builder struct {
	revision   Revision
	addressing WriteAddressing
}

// NewBuilder creates a Builder for the given protocol variant
func NewBuilder(revision Revision, addressing WriteAddressing) *Builder {
	return &Builder{revision: revision, addressing: addressing}
}

// Revision returns the protocol revision the builder targets
func (b *Builder) Revision() Revision {
	return b.revision
}

// Build validates params for intent. It never returns a Command that fails
// Command.Encode for the builder's revision.
func (b *Builder) Build(intent Intent, params Params) (Command, error) {
	var cmd Command
	var err error

	switch intent {
	case IntentReadUID:
		cmd = Command{Kind: CmdReadUID}
	case IntentWriteUID:
		cmd, err = b.buildWriteUID(params)
	case IntentReadSector:
		cmd, err = b.buildReadSector(params)
	case IntentReadAllSectors:
		cmd = Command{Kind: CmdReadDataAll}
	case IntentWriteSector:
		cmd, err = b.buildWriteSector(params)
	default:
		return Command{}, newValidationError("intent", intent, "unknown")
	}
	if err != nil {
		return Command{}, err
	}

	if _, ok := b.revision.Tag(cmd.Kind); !ok {
		return Command{}, fmt.Errorf("%s in %s revision: %w", intent, b.revision, ErrUnsupportedCommand)
	}
	return cmd, nil
}

func (*Builder) buildWriteUID(params Params) (Command, error) {
	uid, err := parseUID(params.UID)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdWriteUID, Payload: uid}, nil
}

func (*Builder) buildReadSector(params Params) (Command, error) {
	if err := validateSector(params.Sector); err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdReadData, Payload: []byte{byte(params.Sector)}}, nil
}

func (b *Builder) buildWriteSector(params Params) (Command, error) {
	if err := validateSector(params.Sector); err != nil {
		return Command{}, err
	}

	var address byte
	var block []byte
	var err error
	switch b.addressing {
	case AddressRow:
		address = byte(params.Sector)
		block, err = hexBlock(params.Data)
	case AddressBlock:
		address = byte(params.Sector * BlocksPerSector)
		block, err = textBlock(params.Data)
	default:
		return Command{}, newValidationError("addressing", b.addressing, "unknown")
	}
	if err != nil {
		return Command{}, err
	}

	payload := make([]byte, 0, 1+BlockSize)
	payload = append(payload, address)
	payload = append(payload, block...)
	return Command{Kind: CmdWriteData, Payload: payload}, nil
}
