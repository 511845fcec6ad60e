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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// Not parallel: the library logger is package state.
func TestSetDebugEnabled_RestoresLevel(t *testing.T) {
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	SetDebugEnabled(true)
	assert.Equal(t, zerolog.DebugLevel, Logger().GetLevel())
	debugf("sent %s", "ReadUID")
	assert.Contains(t, buf.String(), "sent ReadUID")

	SetDebugEnabled(false)
	assert.Equal(t, zerolog.WarnLevel, Logger().GetLevel())

	buf.Reset()
	debugln("dropped")
	Logger().Info().Msg("dropped too")
	Logger().Warn().Msg("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestSetDebugEnabled_DefaultStaysSilent(t *testing.T) {
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	SetLogger(zerolog.Nop())
	SetDebugEnabled(true)
	SetDebugEnabled(false)

	assert.Equal(t, zerolog.Disabled, Logger().GetLevel())
}
